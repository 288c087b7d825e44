package mcp

import (
	"context"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// --- Mock implementations ---

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result       *domain.QueryResult
	err          error
	lastQuestion string
	lastTopK     int
}

func (m *mockQueryService) Query(_ context.Context, question string, topK int) (*domain.QueryResult, error) {
	m.lastQuestion = question
	m.lastTopK = topK
	return m.result, m.err
}

func (m *mockQueryService) Mode() domain.QueryMode {
	return domain.QueryModeExplain
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	result    *domain.VectorQueryResult
	err       error
	lastLimit int
}

func (m *mockIndexService) Index(_ context.Context, records []domain.MediaRecord) (*domain.IndexReport, error) {
	return &domain.IndexReport{Indexed: len(records)}, m.err
}

func (m *mockIndexService) Search(_ context.Context, _ string, topK int) (*domain.VectorQueryResult, error) {
	m.lastLimit = topK
	return m.result, m.err
}

func (m *mockIndexService) Reset(_ context.Context) error {
	return m.err
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return &domain.IndexStatus{}, m.err
}

// mockScanService is a mock implementation of driving.ScanService.
type mockScanService struct {
	record   *domain.MediaRecord
	err      error
	lastPath string
}

func (m *mockScanService) Scan(_ context.Context, _ string) ([]domain.MediaRecord, error) {
	return nil, m.err
}

func (m *mockScanService) ScanFile(_ context.Context, path string) (*domain.MediaRecord, error) {
	m.lastPath = path
	return m.record, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings *domain.Settings
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Set(_ string, _ any) error {
	return m.err
}

func (m *mockSettingsService) ConfigPath() string {
	return "/tmp/config.toml"
}
