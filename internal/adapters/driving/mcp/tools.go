package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/services"
)

// Default result counts.
const (
	defaultTopK  = 5
	defaultLimit = 10
)

// QueryInput is the input schema for the query_media tool.
type QueryInput struct {
	Question string `json:"question" jsonschema:"natural-language question about local media files"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of candidates to retrieve (default 5)"`
}

// QueryOutput is the output schema for the query_media tool.
type QueryOutput struct {
	Answer     string             `json:"answer"`
	Status     domain.QueryStatus `json:"status"`
	Mode       domain.QueryMode   `json:"mode"`
	Candidates []domain.Candidate `json:"candidates"`
	Count      int                `json:"count"`
}

// SearchInput is the input schema for the search_media tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to match against indexed media documents"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search_media tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search hit.
type SearchResultOutput struct {
	ID         string            `json:"id"`
	Path       string            `json:"path"`
	Similarity float64           `json:"similarity"`
	Document   string            `json:"document"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "query_media",
		Description: "Answer a question about local media files using indexed metadata only. " +
			"Returns evidence-backed candidates; never describes file content.",
	}, s.handleQuery)
	s.tools = append(s.tools, "query_media")

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_media",
			Description: "Nearest-neighbour search over the media index without explanation",
		}, s.handleSearch)
		s.tools = append(s.tools, "search_media")
	}
}

// handleQuery handles the query_media tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	result, err := s.ports.Query.Query(ctx, strings.TrimSpace(input.Question), topK)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	candidates := result.Candidates
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	return nil, QueryOutput{
		Answer:     result.Answer,
		Status:     result.Status,
		Mode:       result.Mode,
		Candidates: candidates,
		Count:      result.Count,
	}, nil
}

// handleSearch handles the search_media tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	res, err := s.ports.Index.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{Results: []SearchResultOutput{}}
	if res == nil {
		return nil, output, nil
	}
	for i := 0; i < res.Len(); i++ {
		md := res.Metadatas[i]
		output.Results = append(output.Results, SearchResultOutput{
			ID:         res.IDs[i],
			Path:       md[domain.MetaKeyPath],
			Similarity: services.Similarity(res.Distances[i]),
			Document:   res.Documents[i],
			Metadata:   md,
		})
	}
	output.Count = len(output.Results)
	return nil, output, nil
}
