package domain

// QueryMode selects whether the explainer is consulted.
type QueryMode string

// Query modes.
const (
	// QueryModeExplain runs search, evidence and the explainer.
	QueryModeExplain QueryMode = "explain"

	// QueryModeReadOnly runs search and evidence only.
	QueryModeReadOnly QueryMode = "read_only"
)

// String returns the string representation.
func (m QueryMode) String() string {
	return string(m)
}

// QueryStatus is the terminal outcome of a query.
type QueryStatus string

// Query outcomes.
const (
	QueryAnswered         QueryStatus = "answered"
	QueryNotFound         QueryStatus = "not_found"
	QueryIndexUnavailable QueryStatus = "index_unavailable"
)

// Fixed user-facing answers.
const (
	AnswerNotFound         = "not found: no indexed file matches the question"
	AnswerIndexUnavailable = "index not found: run `mediascope index` first"
)

// QueryState is a step of a single query.
type QueryState string

// Query states.
const (
	StateIdle             QueryState = "idle"
	StateSearching        QueryState = "searching"
	StateNoResults        QueryState = "no_results"
	StateHasResults       QueryState = "has_results"
	StateExplaining       QueryState = "explaining"
	StateAnswered         QueryState = "answered"
	StateIndexUnavailable QueryState = "index_unavailable"
)

var queryTransitions = map[QueryState][]QueryState{
	StateIdle:       {StateSearching, StateIndexUnavailable},
	StateSearching:  {StateNoResults, StateHasResults, StateIndexUnavailable},
	StateNoResults:  {StateAnswered},
	StateHasResults: {StateExplaining, StateAnswered},
	StateExplaining: {StateAnswered},
}

// CanTransition reports whether a query may move from one state to another.
func CanTransition(from, to QueryState) bool {
	for _, next := range queryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s QueryState) IsTerminal() bool {
	return s == StateAnswered || s == StateIndexUnavailable
}

// Candidate is one evidence-backed retrieval hit.
type Candidate struct {
	// ID is the store identifier of the matched document.
	ID string `json:"id"`

	// Path is the media file path.
	Path string `json:"path"`

	// Kind is the media kind.
	Kind string `json:"kind"`

	// Size is the file size as stored.
	Size string `json:"size"`

	// MTime is the modification time as stored.
	MTime string `json:"mtime"`

	// Similarity is 1 - distance, clamped to [0, 1].
	Similarity float64 `json:"similarity"`

	// Reasons are "field=value" strings drawn from the document metadata.
	Reasons []string `json:"reasons"`

	// SourceType is the provenance of the matched document.
	SourceType string `json:"source_type"`
}

// QueryResult is the structured answer of the query engine.
type QueryResult struct {
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Candidates []Candidate `json:"candidates"`
	Count      int         `json:"count"`
	Status     QueryStatus `json:"status"`
	Mode       QueryMode   `json:"mode"`
}
