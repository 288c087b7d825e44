package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/services"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a raw nearest-neighbour query against the store and prints the
matching documents with their distance. No explanation is generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

// searchHit is the JSON form of one search result.
type searchHit struct {
	ID         string            `json:"id"`
	Distance   float64           `json:"distance"`
	Similarity float64           `json:"similarity"`
	Document   string            `json:"document"`
	Metadata   map[string]string `json:"metadata"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	indexer, err := a.Indexer(cmd.Context(), false)
	if err != nil {
		return err
	}

	res, err := indexer.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	hits := toSearchHits(res)

	if searchJSON {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	return outputSearchTable(cmd, hits)
}

func toSearchHits(res *domain.VectorQueryResult) []searchHit {
	hits := make([]searchHit, 0, res.Len())
	for i := 0; i < res.Len(); i++ {
		hits = append(hits, searchHit{
			ID:         res.IDs[i],
			Distance:   res.Distances[i],
			Similarity: services.Similarity(res.Distances[i]),
			Document:   res.Documents[i],
			Metadata:   res.Metadatas[i],
		})
	}
	return hits
}

func outputSearchTable(cmd *cobra.Command, hits []searchHit) error {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	st := newStyles(cmd.OutOrStdout())

	cmd.Println("Results:")
	cmd.Println()
	for i, h := range hits {
		title := h.Metadata[domain.MetaKeyPath]
		if title == "" {
			title = h.ID
		}
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, h.Similarity)
		if src := h.Metadata[domain.MetaKeySourceType]; src != "" && src != domain.SourceTypeMetadata {
			cmd.Printf("      Source: %s\n", src)
		}
		snippet := strings.ReplaceAll(h.Document, "\n", " ")
		cmd.Println(st.Muted.Render(indent(truncate(snippet, 160), "      ")))
		cmd.Println()
	}
	return nil
}
