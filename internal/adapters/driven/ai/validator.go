package ai

import (
	"context"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// ServiceStatus is the result of one connectivity check.
type ServiceStatus struct {
	// Name identifies the service ("embedding", "explainer").
	Name string

	// Target describes what was checked, usually a model name.
	Target string

	// Enabled is false when the service is switched off in settings.
	Enabled bool

	// Err is nil when the service answered.
	Err error
}

// CheckServices pings the embedding service and the explainer.
func CheckServices(ctx context.Context, settings *domain.Settings) []ServiceStatus {
	var statuses []ServiceStatus

	if settings.Store.Backend == domain.StoreBleve {
		statuses = append(statuses, ServiceStatus{Name: "embedding", Target: "not used by bleve"})
	} else {
		embedder, err := CreateEmbeddingService(settings.Embedding)
		if err != nil {
			statuses = append(statuses, ServiceStatus{Name: "embedding", Enabled: true, Err: err})
		} else {
			statuses = append(statuses, check(ctx, "embedding", embedder.ModelName(), embedder))
			_ = embedder.Close()
		}
	}

	llm := CreateLLMService(settings.Explainer)
	if llm == nil {
		return append(statuses, ServiceStatus{Name: "explainer", Target: settings.Explainer.Model})
	}
	defer llm.Close()
	return append(statuses, check(ctx, "explainer", llm.ModelName(), llm))
}

type pinger interface {
	Ping(ctx context.Context) error
}

func check(ctx context.Context, name, target string, p pinger) ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return ServiceStatus{Name: name, Target: target, Enabled: true, Err: p.Ping(ctx)}
}
