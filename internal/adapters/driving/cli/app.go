package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/mediascope/internal/adapters/driven/ai"
	"github.com/custodia-labs/mediascope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediascope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/mediascope/internal/adapters/driven/tools"
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/core/services"
	"github.com/custodia-labs/mediascope/internal/extractors"
	"github.com/custodia-labs/mediascope/internal/extractors/archive"
	"github.com/custodia-labs/mediascope/internal/extractors/audio"
	"github.com/custodia-labs/mediascope/internal/extractors/image"
	"github.com/custodia-labs/mediascope/internal/extractors/textsource"
	"github.com/custodia-labs/mediascope/internal/extractors/videoaudio"
	"github.com/custodia-labs/mediascope/internal/normalisers"
	"github.com/custodia-labs/mediascope/internal/postprocessors"
)

// App supplies the services behind each command.
type App interface {
	// Settings returns the effective settings.
	Settings() (*domain.Settings, error)

	// SettingsService reads and writes the config file.
	SettingsService() driving.SettingsService

	// Scanner returns the directory scanner.
	Scanner(ctx context.Context) (driving.ScanService, error)

	// Exporter returns the scan export codec.
	Exporter() driving.ExportService

	// Indexer returns the indexer. With create false a missing index stays
	// missing and reads report it unavailable.
	Indexer(ctx context.Context, create bool) (driving.IndexService, error)

	// QueryEngine returns the query engine.
	QueryEngine(ctx context.Context, readOnly bool) (driving.QueryService, error)

	// Capabilities reports the external probing tools.
	Capabilities(ctx context.Context) domain.Capabilities

	// CheckServices pings the embedding service and the explainer.
	CheckServices(ctx context.Context) []ai.ServiceStatus

	// Close releases open stores and clients.
	Close()
}

// runtimeApp wires the real adapters from the config file and environment.
type runtimeApp struct {
	settingsService *services.SettingsService
	promptDir       string

	mu         sync.Mutex
	settings   *domain.Settings
	runner     *tools.Runner
	caps       *domain.Capabilities
	text       *textsource.Extractor
	components *ai.Components
	guard      *services.StoreGuard
}

// NewRuntimeApp loads the config store at configPath, or the default
// location when empty.
func NewRuntimeApp(configPath string) (App, error) {
	var (
		store driven.ConfigStore
		err   error
	)
	switch configPath {
	case "":
		store, err = file.NewConfigStore("")
	case memory.MemoryConfigPath:
		store = memory.NewConfigStore()
	default:
		store, err = file.NewConfigStoreAt(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a := &runtimeApp{settingsService: services.NewSettingsService(store)}
	if store.Path() != memory.MemoryConfigPath {
		a.promptDir = filepath.Join(filepath.Dir(store.Path()), "prompts")
	}
	return a, nil
}

func (a *runtimeApp) Settings() (*domain.Settings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadSettings()
}

func (a *runtimeApp) loadSettings() (*domain.Settings, error) {
	if a.settings != nil {
		return a.settings, nil
	}
	s, err := a.settingsService.Get()
	if err != nil {
		return nil, err
	}
	a.settings = s
	return s, nil
}

func (a *runtimeApp) SettingsService() driving.SettingsService {
	return a.settingsService
}

func (a *runtimeApp) Exporter() driving.ExportService {
	return services.NewExporter()
}

func (a *runtimeApp) Capabilities(ctx context.Context) domain.Capabilities {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.loadSettings()
	if err != nil {
		s = &domain.Settings{}
	}
	return a.capabilities(ctx, s)
}

func (a *runtimeApp) capabilities(ctx context.Context, s *domain.Settings) domain.Capabilities {
	if a.caps == nil {
		a.runner = tools.NewRunner(tools.WithRate(s.Tools.RatePerSecond))
		caps := tools.DetectCapabilities(ctx, a.runner)
		a.caps = &caps
	}
	return *a.caps
}

func (a *runtimeApp) textReader(s *domain.Settings) *textsource.Extractor {
	if a.text == nil {
		a.text = textsource.New(
			textsource.WithMaxSize(s.Text.MaxSizeBytes),
			textsource.WithErrorPolicy(s.Text.EncodingErrors),
			textsource.WithNormalisers(normalisers.Default()),
		)
	}
	return a.text
}

func (a *runtimeApp) Scanner(ctx context.Context) (driving.ScanService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.loadSettings()
	if err != nil {
		return nil, err
	}
	caps := a.capabilities(ctx, s)

	prober := videoaudio.New(a.runner, caps, videoaudio.WithKind(domain.KindAudio))
	registry := extractors.NewRegistry(
		videoaudio.New(a.runner, caps),
		audio.NewDefault(prober),
		image.New(),
		archive.New(a.runner, caps,
			archive.WithMaxEntries(s.Archive.MaxEntries),
			archive.WithMaxSizeGB(s.Archive.MaxSizeGB),
		),
	)
	return services.NewScanner(registry, a.textReader(s),
		services.WithWorkers(s.Scan.Workers),
		services.WithExtensions(s.Scan.Extensions),
	), nil
}

// storeGuard opens the store on first use. A later call with create set
// reopens a store that was missing.
func (a *runtimeApp) storeGuard(s *domain.Settings, create bool) (*services.StoreGuard, error) {
	if a.guard != nil && (a.guard.Available() || !create) {
		return a.guard, nil
	}
	if a.components != nil {
		a.components.Close()
	}
	c, err := ai.Build(s, create)
	if err != nil {
		return nil, err
	}
	a.components = c
	a.guard = services.NewStoreGuard(c.VectorStore)
	return a.guard, nil
}

func (a *runtimeApp) Indexer(_ context.Context, create bool) (driving.IndexService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.loadSettings()
	if err != nil {
		return nil, err
	}
	guard, err := a.storeGuard(s, create)
	if err != nil {
		return nil, err
	}

	var opts []services.IndexerOption
	if s.Index.SidecarChunks {
		registry := postprocessors.NewRegistry()
		postprocessors.RegisterDefaults(registry)
		chunker, err := registry.Build(string(s.Chunk.Strategy), postprocessors.ConfigFromSettings(s.Chunk))
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithSidecarChunks(a.textReader(s), chunker))
	}
	return services.NewIndexer(guard, opts...), nil
}

func (a *runtimeApp) QueryEngine(_ context.Context, readOnly bool) (driving.QueryService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.loadSettings()
	if err != nil {
		return nil, err
	}
	guard, err := a.storeGuard(s, false)
	if err != nil {
		return nil, err
	}

	q := services.NewQueryEngine(guard,
		services.WithExplainer(a.components.LLMService),
		services.WithExplainerTimeout(s.Explainer.Timeout),
		services.WithTemperature(s.Explainer.Temperature),
		services.WithReadOnly(readOnly),
	)
	prompts, err := file.NewPromptStore(a.promptDir,
		file.WithDefaultPrompt(driven.PromptExplain, services.DefaultExplainPrompt))
	if err != nil {
		return nil, err
	}
	q.SetPromptStore(prompts)
	return q, nil
}

func (a *runtimeApp) CheckServices(ctx context.Context) []ai.ServiceStatus {
	s, err := a.Settings()
	if err != nil {
		return []ai.ServiceStatus{{Name: "settings", Enabled: true, Err: err}}
	}
	return ai.CheckServices(ctx, s)
}

func (a *runtimeApp) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.components != nil {
		a.components.Close()
		a.components = nil
		a.guard = nil
	}
}
