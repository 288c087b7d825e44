package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	mu sync.Mutex

	docs     []string
	metas    []map[string]string
	ids      []string
	addCalls int
	persists int
	resets   int

	count    int
	countErr error
	result   *domain.VectorQueryResult
	queryErr error
	addErr   error
	lastTopK int

	deleted   []string
	deleteErr error
}

func (m *mockVectorStore) Add(_ context.Context, docs []string, metas []map[string]string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.docs = append(m.docs, docs...)
	m.metas = append(m.metas, metas...)
	m.ids = append(m.ids, ids...)
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ string, topK int) (*domain.VectorQueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTopK = topK
	return m.result, m.queryErr
}

func (m *mockVectorStore) DeleteByPath(_ context.Context, paths []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, paths...)
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		drop[p] = true
	}
	var docs []string
	var metas []map[string]string
	var ids []string
	removed := 0
	for i := range m.ids {
		if drop[m.metas[i][domain.MetaKeyPath]] {
			removed++
			continue
		}
		docs = append(docs, m.docs[i])
		metas = append(metas, m.metas[i])
		ids = append(ids, m.ids[i])
	}
	m.docs, m.metas, m.ids = docs, metas, ids
	return removed, nil
}

func (m *mockVectorStore) Persist(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persists++
	return nil
}

// mockHistoryStore adds a run history to mockVectorStore.
type mockHistoryStore struct {
	*mockVectorStore
	run    *domain.IndexRun
	runErr error
}

func (m *mockHistoryStore) LastRun(_ context.Context) (*domain.IndexRun, error) {
	return m.run, m.runErr
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

func (m *mockVectorStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	m.docs, m.metas, m.ids = nil, nil, nil
	return nil
}

func (m *mockVectorStore) Close() error {
	return nil
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	answer  string
	err     error
	delay   time.Duration
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.answer, m.err
}

func (m *mockLLM) ModelName() string { return "mock" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.template, m.err }
func (m *mockPromptStore) Reload() {}

// mockTextReader implements driven.TextSourceReader for testing.
type mockTextReader struct {
	sidecars map[string]map[string]domain.SidecarRef
	full     map[string]string
}

func (m *mockTextReader) Discover(mediaPath string) map[string]domain.SidecarRef {
	return m.sidecars[mediaPath]
}

func (m *mockTextReader) FromSidecars(refs map[string]domain.SidecarRef) domain.TextExtraction {
	out := domain.TextExtraction{Errors: []string{}}
	for _, ref := range refs {
		text := m.full[ref.Path]
		out.Sources = append(out.Sources, domain.TextSource{
			SourceType: ref.Type,
			Path:       ref.Path,
			Text:       text,
			TextLength: len([]rune(text)),
		})
		out.TotalTextSize += len([]rune(text))
	}
	return out
}

func (m *mockTextReader) FromPath(mediaPath string) domain.TextExtraction {
	return m.FromSidecars(m.Discover(mediaPath))
}

func (m *mockTextReader) ReadFull(path string) (string, error) {
	text, ok := m.full[path]
	if !ok {
		return "", errors.New("missing")
	}
	return text, nil
}

// mockChunker implements driven.Chunker by splitting on blank lines.
type mockChunker struct{}

func (mockChunker) Name() string { return "mock" }

func (mockChunker) Chunk(text string, metadata map[string]string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	start := 0
	for i, part := range splitParagraphs(text) {
		md := make(map[string]string, len(metadata))
		for k, v := range metadata {
			md[k] = v
		}
		n := len([]rune(part))
		chunks = append(chunks, domain.Chunk{
			ID: i, Text: part, StartOffset: start, EndOffset: start + n, Length: n, Metadata: md,
		})
		start += n
	}
	return chunks, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mockExtractors implements driven.ExtractorRegistry for testing.
type mockExtractors struct {
	mu    sync.Mutex
	metas map[domain.Kind]domain.KindMeta
	calls []string
}

func (m *mockExtractors) Register(_ driven.Extractor) {}
func (m *mockExtractors) For(_ domain.Kind) (driven.Extractor, bool) { return nil, false }
func (m *mockExtractors) Kinds() []domain.Kind { return nil }

func (m *mockExtractors) Extract(_ context.Context, kind domain.Kind, path string) domain.KindMeta {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path)
	return m.metas[kind]
}

// mockToolRunner answers every tool call with fixed output.
type mockToolRunner struct {
	out []byte
}

func (m *mockToolRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func (m *mockToolRunner) Run(_ context.Context, _ time.Duration, _ string, _ ...string) ([]byte, error) {
	return m.out, nil
}
