package cli

import (
	"bytes"
	"context"

	"github.com/custodia-labs/mediascope/internal/adapters/driven/ai"
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/core/services"
)

// --- Mock implementations ---

// mockApp is a mock implementation of App.
type mockApp struct {
	settings    *domain.Settings
	settingsErr error
	settingsSvc *mockSettingsService
	scanner     *mockScanService
	indexer     *mockIndexService
	query       *mockQueryService
	caps        domain.Capabilities
	statuses    []ai.ServiceStatus

	lastReadOnly bool
	lastCreate   bool
	closed       bool
}

func newMockApp() *mockApp {
	s := domain.DefaultSettings()
	s.Scan.Root = "/media"
	return &mockApp{
		settings:    &s,
		settingsSvc: &mockSettingsService{values: map[string]any{}},
		scanner:     &mockScanService{},
		indexer:     &mockIndexService{},
		query:       &mockQueryService{},
	}
}

func (m *mockApp) Settings() (*domain.Settings, error) {
	return m.settings, m.settingsErr
}

func (m *mockApp) SettingsService() driving.SettingsService {
	return m.settingsSvc
}

func (m *mockApp) Scanner(_ context.Context) (driving.ScanService, error) {
	return m.scanner, nil
}

func (m *mockApp) Exporter() driving.ExportService {
	return services.NewExporter()
}

func (m *mockApp) Indexer(_ context.Context, create bool) (driving.IndexService, error) {
	m.lastCreate = create
	return m.indexer, nil
}

func (m *mockApp) QueryEngine(_ context.Context, readOnly bool) (driving.QueryService, error) {
	m.lastReadOnly = readOnly
	return m.query, nil
}

func (m *mockApp) Capabilities(_ context.Context) domain.Capabilities {
	return m.caps
}

func (m *mockApp) CheckServices(_ context.Context) []ai.ServiceStatus {
	return m.statuses
}

func (m *mockApp) Close() {
	m.closed = true
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	values map[string]any
	err    error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := domain.DefaultSettings()
	return &s, m.err
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockSettingsService) ConfigPath() string {
	return "/home/user/.mediascope/config.toml"
}

// mockScanService is a mock implementation of driving.ScanService.
type mockScanService struct {
	records  []domain.MediaRecord
	files    map[string]*domain.MediaRecord
	err      error
	lastRoot string
}

func (m *mockScanService) Scan(_ context.Context, root string) ([]domain.MediaRecord, error) {
	m.lastRoot = root
	return m.records, m.err
}

func (m *mockScanService) ScanFile(_ context.Context, path string) (*domain.MediaRecord, error) {
	if rec, ok := m.files[path]; ok {
		return rec, nil
	}
	return nil, domain.ErrUnsupportedFormat
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	status    *domain.IndexStatus
	report    *domain.IndexReport
	result    *domain.VectorQueryResult
	err       error
	indexed   []domain.MediaRecord
	resets    int
	lastQuery string
	lastTopK  int
}

func (m *mockIndexService) Index(_ context.Context, records []domain.MediaRecord) (*domain.IndexReport, error) {
	m.indexed = append(m.indexed, records...)
	if m.err != nil {
		return nil, m.err
	}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IndexReport{Indexed: len(records)}, nil
}

func (m *mockIndexService) Search(_ context.Context, query string, topK int) (*domain.VectorQueryResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.result, m.err
}

func (m *mockIndexService) Reset(_ context.Context) error {
	m.resets++
	return m.err
}

func (m *mockIndexService) Status(_ context.Context) (*domain.IndexStatus, error) {
	if m.status == nil {
		return &domain.IndexStatus{}, m.err
	}
	return m.status, m.err
}

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

// runCLI executes the root command against a mock app and returns the output.
func runCLI(a *mockApp, args ...string) (string, error) {
	resetFlags()
	app = a
	defer func() {
		app = nil
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag globals so tests do not leak into each other.
func resetFlags() {
	configPath = ""
	verbose = false
	scanOut, scanFormat = "", ""
	indexFrom, indexFormat, indexRebuild = "", "", false
	queryTopK, queryReadOnly, queryJSON = 5, false, false
	searchLimit, searchJSON = 10, false
	watchDebounce = 0
}
