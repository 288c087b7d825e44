package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Ensure QueryEngine implements the interfaces.
var (
	_ driving.QueryService    = (*QueryEngine)(nil)
	_ driven.PromptStoreAware = (*QueryEngine)(nil)
)

// Query defaults.
const (
	DefaultTopK             = 5
	DefaultExplainerTimeout = 30 * time.Second
)

// QueryEngine retrieves candidates and explains them without inferring
// file content.
type QueryEngine struct {
	guard       *StoreGuard
	explainer   driven.LLMService
	prompts     driven.PromptStore
	timeout     time.Duration
	temperature float64
	readOnly    bool
}

// QueryOption configures a QueryEngine.
type QueryOption func(*QueryEngine)

// WithExplainer enables explain mode.
func WithExplainer(llm driven.LLMService) QueryOption {
	return func(q *QueryEngine) {
		q.explainer = llm
	}
}

// WithExplainerTimeout bounds each explainer call.
func WithExplainerTimeout(d time.Duration) QueryOption {
	return func(q *QueryEngine) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithTemperature sets the explainer temperature.
func WithTemperature(t float64) QueryOption {
	return func(q *QueryEngine) {
		q.temperature = t
	}
}

// WithReadOnly forces read-only mode even when an explainer is configured.
func WithReadOnly(readOnly bool) QueryOption {
	return func(q *QueryEngine) {
		q.readOnly = readOnly
	}
}

// NewQueryEngine creates a query engine over a guarded store.
func NewQueryEngine(guard *StoreGuard, opts ...QueryOption) *QueryEngine {
	q := &QueryEngine{
		guard:   guard,
		timeout: DefaultExplainerTimeout,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// SetPromptStore implements driven.PromptStoreAware.
func (q *QueryEngine) SetPromptStore(store driven.PromptStore) {
	q.prompts = store
}

// Mode returns the effective query mode.
func (q *QueryEngine) Mode() domain.QueryMode {
	if q.explainer == nil || q.readOnly {
		return domain.QueryModeReadOnly
	}
	return domain.QueryModeExplain
}

// queryRun tracks the state of one query.
type queryRun struct {
	state domain.QueryState
}

func (r *queryRun) to(next domain.QueryState) {
	if !domain.CanTransition(r.state, next) {
		logger.Warn("unexpected query transition %s -> %s", r.state, next)
	}
	logger.Debug("query state: %s -> %s", r.state, next)
	r.state = next
}

// Query answers a question. Backend failures are reported through the
// result status and answer; the returned error is reserved for invalid
// input.
func (q *QueryEngine) Query(ctx context.Context, question string, topK int) (*domain.QueryResult, error) {
	logger.Section("Query")
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	run := &queryRun{state: domain.StateIdle}
	result := &domain.QueryResult{
		Question:   question,
		Candidates: []domain.Candidate{},
		Mode:       q.Mode(),
	}

	if !q.guard.Available() {
		run.to(domain.StateIndexUnavailable)
		return q.indexUnavailable(result), nil
	}

	run.to(domain.StateSearching)
	var hits *domain.VectorQueryResult
	err := q.guard.Read(func(store driven.VectorStore) error {
		n, err := store.Count(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
		}
		if n == 0 {
			hits = &domain.VectorQueryResult{}
			return nil
		}
		hits, err = store.Query(ctx, question, topK)
		return err
	})
	if err != nil {
		logger.Warn("query search failed: %v", err)
		run.to(domain.StateIndexUnavailable)
		return q.indexUnavailable(result), nil
	}

	if hits.Len() == 0 {
		run.to(domain.StateNoResults)
		result.Status = domain.QueryNotFound
		result.Answer = domain.AnswerNotFound
		run.to(domain.StateAnswered)
		return result, nil
	}

	run.to(domain.StateHasResults)
	result.Candidates = BuildCandidates(hits)
	result.Count = len(result.Candidates)
	result.Status = domain.QueryAnswered

	if result.Mode == domain.QueryModeReadOnly {
		result.Answer = fmt.Sprintf("%d candidate(s) found", result.Count)
		run.to(domain.StateAnswered)
		return result, nil
	}

	run.to(domain.StateExplaining)
	result.Answer = q.explain(ctx, question, result.Candidates)
	run.to(domain.StateAnswered)
	return result, nil
}

func (q *QueryEngine) indexUnavailable(result *domain.QueryResult) *domain.QueryResult {
	result.Status = domain.QueryIndexUnavailable
	result.Answer = domain.AnswerIndexUnavailable
	result.Count = 0
	return result
}

// explain calls the explainer with a bounded timeout. Failures become a
// user-facing message.
func (q *QueryEngine) explain(ctx context.Context, question string, candidates []domain.Candidate) string {
	prompt := BuildPrompt(q.promptTemplate(), question, candidates)

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	answer, err := q.explainer.Generate(ctx, prompt, driven.GenerateOptions{Temperature: q.temperature})
	if err != nil {
		logger.Warn("explainer failed: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Sprintf("%v: timed out after %s", domain.ErrExplainerUnavailable, q.timeout)
		}
		return fmt.Sprintf("%v: %v", domain.ErrExplainerUnavailable, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Sprintf("%v: empty response", domain.ErrExplainerUnavailable)
	}
	return answer
}

func (q *QueryEngine) promptTemplate() string {
	if q.prompts == nil {
		return DefaultExplainPrompt
	}
	tmpl, err := q.prompts.Load(driven.PromptExplain)
	if err != nil || strings.Count(tmpl, "%s") != 2 {
		return DefaultExplainPrompt
	}
	return tmpl
}

// BuildCandidates converts raw hits into evidence-backed candidates.
// Reasons are drawn only from each hit's own metadata.
func BuildCandidates(hits *domain.VectorQueryResult) []domain.Candidate {
	out := make([]domain.Candidate, 0, hits.Len())
	for i := range hits.IDs {
		var md map[string]string
		if i < len(hits.Metadatas) {
			md = hits.Metadatas[i]
		}
		var distance float64
		if i < len(hits.Distances) {
			distance = hits.Distances[i]
		}
		sourceType := md[domain.MetaKeySourceType]
		if sourceType == "" {
			sourceType = domain.SourceTypeMetadata
		}
		out = append(out, domain.Candidate{
			ID:         hits.IDs[i],
			Path:       md[domain.MetaKeyPath],
			Kind:       md[domain.MetaKeyKind],
			Size:       md[domain.MetaKeySize],
			MTime:      md[domain.MetaKeyMTime],
			Similarity: Similarity(distance),
			Reasons:    Evidence(md),
			SourceType: sourceType,
		})
	}
	return out
}

// Evidence returns "field=value" reasons for whitelisted fields present
// in md, in whitelist order.
func Evidence(md map[string]string) []string {
	reasons := []string{}
	for _, key := range domain.EvidenceFields {
		if v, ok := md[key]; ok && v != "" {
			reasons = append(reasons, key+"="+v)
		}
	}
	return reasons
}

// Similarity converts a distance to a score in [0, 1].
func Similarity(distance float64) float64 {
	s := 1 - distance
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}
