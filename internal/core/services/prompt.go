package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// DefaultExplainPrompt is used when no prompt store overrides it. It takes
// the question and the evidence block.
const DefaultExplainPrompt = `You are the assistant of a local media file search system.

Question:
%s

Candidate files retrieved for this question, with the only evidence available:
%s

Rules:
1. Never infer or guess what a file contains. Do not describe its content or meaning.
2. Cite only the evidence listed above: file names, paths and metadata fields.
3. If the evidence is insufficient to answer, say "not found". Do not offer speculative candidates.
4. List every candidate with its path and the evidence that matched.

Answer:`

// noEvidence marks a candidate matched on generic fields only.
const noEvidence = "(generic fields only)"

// BuildEvidence renders candidates as the evidence block of the prompt.
func BuildEvidence(candidates []domain.Candidate) string {
	var b strings.Builder
	for i, c := range candidates {
		reasons := noEvidence
		if len(c.Reasons) > 0 {
			reasons = strings.Join(c.Reasons, documentSeparator)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[candidate %d] (kind: %s)\n", i+1, c.Kind)
		fmt.Fprintf(&b, "  path: %s\n", c.Path)
		fmt.Fprintf(&b, "  matched: %s\n", reasons)
		fmt.Fprintf(&b, "  source: %s\n", c.SourceType)
		fmt.Fprintf(&b, "  similarity: %.3f", c.Similarity)
	}
	return b.String()
}

// BuildPrompt fills a two-placeholder template with the question and evidence.
func BuildPrompt(template, question string, candidates []domain.Candidate) string {
	return fmt.Sprintf(template, question, BuildEvidence(candidates))
}
