package driving

import (
	"context"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// QueryService answers natural-language questions with evidence.
type QueryService interface {
	// Query retrieves candidates and, in explain mode, an explanation.
	// Backend failures are reported in the result, not as errors.
	Query(ctx context.Context, question string, topK int) (*domain.QueryResult, error)

	// Mode returns the effective query mode.
	Mode() domain.QueryMode
}
