package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

var (
	queryTopK     int
	queryReadOnly bool
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question about indexed media",
	Long: `Retrieves the files closest to the question and lists the metadata that
matched. In explain mode the explainer (explainer.model) summarises the
candidates using only that evidence; it never guesses what a file contains.

Use --read-only to skip the explainer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top", "n", 5, "number of candidates to retrieve")
	queryCmd.Flags().BoolVar(&queryReadOnly, "read-only", false, "list candidates without calling the explainer")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	engine, err := a.QueryEngine(cmd.Context(), queryReadOnly)
	if err != nil {
		return err
	}

	result, err := engine.Query(cmd.Context(), strings.Join(args, " "), queryTopK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}
	printQueryResult(cmd.OutOrStdout(), result)
	return nil
}

func printQueryResult(w io.Writer, result *domain.QueryResult) {
	st := newStyles(w)

	switch result.Status {
	case domain.QueryIndexUnavailable:
		fmt.Fprintln(w, st.Error.Render(result.Answer))
		return
	case domain.QueryNotFound:
		fmt.Fprintln(w, st.Muted.Render(result.Answer))
		return
	}

	fmt.Fprintln(w, st.Answer.Render(result.Answer))
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("Candidates (%d)", result.Count)))
	printCandidates(w, st, result.Candidates)
}

func printCandidates(w io.Writer, st styles, candidates []domain.Candidate) {
	for i, c := range candidates {
		fmt.Fprintf(w, "  [%d] %s %s\n", i+1, c.Path, st.Muted.Render(fmt.Sprintf("(%s, %.3f)", c.Kind, c.Similarity)))
		if len(c.Reasons) == 0 {
			fmt.Fprintln(w, st.Muted.Render("      matched on generic fields only"))
			continue
		}
		for _, r := range c.Reasons {
			fmt.Fprintf(w, "      %s\n", truncate(r, st.width-6))
		}
	}
}
