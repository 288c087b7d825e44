package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides, e.g. MEDIASCOPE_SCAN_WORKERS.
const EnvPrefix = "MEDIASCOPE_"

// Config keys for settings storage.
const (
	keyScanRoot          = "scan.root"
	keyScanWorkers       = "scan.workers"
	keyScanExtensions    = "scan.extensions"
	keyArchiveMaxEntries = "archive.max_entries"
	keyArchiveMaxSizeGB  = "archive.max_size_gb"
	keyTextMaxSize       = "text.max_size_bytes"
	keyTextEncodings     = "text.encoding_errors"
	keyChunkStrategy     = "chunk.strategy"
	keyChunkSize         = "chunk.size"
	keyChunkOverlap      = "chunk.overlap"
	keyChunkMaxChars     = "chunk.max_chars"
	keyIndexSidecars     = "index.sidecar_chunks"
	keyStoreBackend      = "store.backend"
	keyStorePath         = "store.path"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedDimensions   = "embedding.dimensions"
	keyExplainEnabled    = "explainer.enabled"
	keyExplainBaseURL    = "explainer.base_url"
	keyExplainModel      = "explainer.model"
	keyExplainTemp       = "explainer.temperature"
	keyExplainTimeout    = "explainer.timeout"
	keyToolsRate         = "tools.rate_per_second"
)

// valueType is the storage type of a setting.
type valueType int

const (
	typeString valueType = iota
	typeInt
	typeFloat
	typeBool
	typeDuration
	typeList
)

var settingTypes = map[string]valueType{
	keyScanRoot:          typeString,
	keyScanWorkers:       typeInt,
	keyArchiveMaxEntries: typeInt,
	keyArchiveMaxSizeGB:  typeFloat,
	keyTextMaxSize:       typeInt,
	keyTextEncodings:     typeString,
	keyChunkStrategy:     typeString,
	keyChunkSize:         typeInt,
	keyChunkOverlap:      typeInt,
	keyChunkMaxChars:     typeInt,
	keyIndexSidecars:     typeBool,
	keyStoreBackend:      typeString,
	keyStorePath:         typeString,
	keyEmbedProvider:     typeString,
	keyEmbedModel:        typeString,
	keyEmbedBaseURL:      typeString,
	keyEmbedDimensions:   typeInt,
	keyExplainEnabled:    typeBool,
	keyExplainBaseURL:    typeString,
	keyExplainModel:      typeString,
	keyExplainTemp:       typeFloat,
	keyExplainTimeout:    typeDuration,
	keyToolsRate:         typeFloat,
}

// extensionKinds are the kinds configurable under scan.extensions.<kind>.
var extensionKinds = []domain.Kind{domain.KindVideo, domain.KindAudio, domain.KindImage, domain.KindArchive}

// SettingsService resolves the effective configuration. Precedence, highest
// first: process environment, .env files, config store, built-in defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
	dotenvFiles []string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnvLookup replaces os.LookupEnv.
func WithEnvLookup(fn func(string) (string, bool)) SettingsOption {
	return func(s *SettingsService) {
		if fn != nil {
			s.lookupEnv = fn
		}
	}
}

// WithDotenvFiles sets the .env files consulted below the process
// environment. Missing files are ignored.
func WithDotenvFiles(paths ...string) SettingsOption {
	return func(s *SettingsService) {
		s.dotenvFiles = paths
	}
}

// NewSettingsService creates a new settings service. By default it reads
// ".env" in the working directory.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
		dotenvFiles: []string{".env"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfigPath returns the path of the backing config file.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// EnvName returns the environment variable overriding a config key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(settingTypes)+len(extensionKinds))
	for k := range settingTypes {
		keys = append(keys, k)
	}
	for _, kind := range extensionKinds {
		keys = append(keys, keyScanExtensions+"."+kind.String())
	}
	sort.Strings(keys)
	return keys
}

// Get resolves and validates the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	r := &resolver{store: s.configStore, lookupEnv: s.lookupEnv, dotenv: s.readDotenv()}
	def := domain.DefaultSettings()

	settings := &domain.Settings{
		Scan: domain.ScanSettings{
			Root:       r.getString(keyScanRoot, def.Scan.Root),
			Workers:    r.getInt(keyScanWorkers, def.Scan.Workers),
			Extensions: r.extensions(),
		},
		Archive: domain.ArchiveSettings{
			MaxEntries: r.getInt(keyArchiveMaxEntries, def.Archive.MaxEntries),
			MaxSizeGB:  r.getFloat(keyArchiveMaxSizeGB, def.Archive.MaxSizeGB),
		},
		Text: domain.TextSettings{
			MaxSizeBytes:   int64(r.getInt(keyTextMaxSize, int(def.Text.MaxSizeBytes))),
			EncodingErrors: domain.EncodingErrorPolicy(r.getString(keyTextEncodings, string(def.Text.EncodingErrors))),
		},
		Chunk: domain.ChunkSettings{
			Strategy: domain.ChunkStrategy(r.getString(keyChunkStrategy, string(def.Chunk.Strategy))),
			Size:     r.getInt(keyChunkSize, def.Chunk.Size),
			Overlap:  r.getInt(keyChunkOverlap, def.Chunk.Overlap),
			MaxChars: r.getInt(keyChunkMaxChars, def.Chunk.MaxChars),
		},
		Index: domain.IndexSettings{
			SidecarChunks: r.getBool(keyIndexSidecars, def.Index.SidecarChunks),
		},
		Store: domain.StoreSettings{
			Backend: domain.StoreBackend(r.getString(keyStoreBackend, string(def.Store.Backend))),
			Path:    r.getString(keyStorePath, ""),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   domain.EmbeddingProvider(r.getString(keyEmbedProvider, string(def.Embedding.Provider))),
			Model:      r.getString(keyEmbedModel, def.Embedding.Model),
			BaseURL:    r.getString(keyEmbedBaseURL, def.Embedding.BaseURL),
			Dimensions: r.getInt(keyEmbedDimensions, def.Embedding.Dimensions),
		},
		Explainer: domain.ExplainerSettings{
			Enabled:     r.getBool(keyExplainEnabled, def.Explainer.Enabled),
			BaseURL:     r.getString(keyExplainBaseURL, def.Explainer.BaseURL),
			Model:       r.getString(keyExplainModel, def.Explainer.Model),
			Temperature: r.getFloat(keyExplainTemp, def.Explainer.Temperature),
			Timeout:     r.getDuration(keyExplainTimeout, def.Explainer.Timeout),
		},
		Tools: domain.ToolSettings{
			RatePerSecond: r.getFloat(keyToolsRate, def.Tools.RatePerSecond),
		},
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}

	if settings.Store.Path == "" {
		settings.Store.Path = s.defaultStorePath(settings.Store.Backend)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set type-checks a value and persists it under key. String values are
// converted to the key's type.
func (s *SettingsService) Set(key string, value any) error {
	typ, ok := typeOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidConfig, key)
	}
	v, err := coerce(typ, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, key, err)
	}
	if err := checkEnum(key, v); err != nil {
		return err
	}
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	logger.Debug("set %s = %v", key, v)
	return nil
}

func (s *SettingsService) readDotenv() map[string]string {
	var existing []string
	for _, p := range s.dotenvFiles {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	env, err := godotenv.Read(existing...)
	if err != nil {
		logger.Warn("read dotenv: %v", err)
		return nil
	}
	return env
}

// defaultStorePath places the index next to the config file.
func (s *SettingsService) defaultStorePath(backend domain.StoreBackend) string {
	var name string
	switch backend {
	case domain.StoreSQLite:
		name = "index.db"
	case domain.StoreBleve:
		name = "index.bleve"
	default:
		return ""
	}

	dir := filepath.Dir(s.configStore.Path())
	if s.configStore.Path() == ":memory:" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".mediascope")
	}
	return filepath.Join(dir, name)
}

func typeOf(key string) (valueType, bool) {
	if t, ok := settingTypes[key]; ok {
		return t, true
	}
	if kind, ok := strings.CutPrefix(key, keyScanExtensions+"."); ok {
		for _, k := range extensionKinds {
			if k.String() == kind {
				return typeList, true
			}
		}
	}
	return 0, false
}

func checkEnum(key string, v any) error {
	str, _ := v.(string)
	var valid bool
	switch key {
	case keyStoreBackend:
		valid = domain.StoreBackend(str).IsValid()
	case keyEmbedProvider:
		valid = domain.EmbeddingProvider(str).IsValid()
	case keyTextEncodings:
		valid = domain.EncodingErrorPolicy(str).IsValid()
	case keyChunkStrategy:
		valid = domain.ChunkStrategy(str).IsValid()
	default:
		return nil
	}
	if !valid {
		return fmt.Errorf("%w: %s %q", domain.ErrInvalidConfig, key, str)
	}
	return nil
}

// coerce converts a value to the storage type of a key.
func coerce(typ valueType, value any) (any, error) {
	raw, isString := value.(string)
	switch typ {
	case typeString:
		if !isString {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return raw, nil
	case typeInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", v)
			}
			return n, nil
		}
	case typeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", v)
			}
			return f, nil
		}
	case typeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", v)
			}
			return b, nil
		}
	case typeDuration:
		switch v := value.(type) {
		case time.Duration:
			return v.String(), nil
		case int, int64, float64:
			return v, nil
		case string:
			if _, err := parseDuration(v); err != nil {
				return nil, err
			}
			return strings.TrimSpace(v), nil
		}
	case typeList:
		switch v := value.(type) {
		case []string:
			return v, nil
		case string:
			return splitList(v), nil
		}
	}
	return nil, fmt.Errorf("unsupported value %T", value)
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("expected duration, got %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// resolver reads one key through the precedence layers and collects parse
// errors of string overrides.
type resolver struct {
	store     driven.ConfigStore
	lookupEnv func(string) (string, bool)
	dotenv    map[string]string
	errs      []error
}

func (r *resolver) override(key string) (string, bool) {
	name := EnvName(key)
	if v, ok := r.lookupEnv(name); ok {
		return v, true
	}
	v, ok := r.dotenv[name]
	return v, ok
}

func (r *resolver) has(key string) bool {
	_, ok := r.store.Get(key)
	return ok
}

func (r *resolver) fail(key, raw, want string) {
	r.errs = append(r.errs, fmt.Errorf("%w: %s=%q is not %s", domain.ErrInvalidConfig, EnvName(key), raw, want))
}

func (r *resolver) getString(key, def string) string {
	if v, ok := r.override(key); ok {
		return v
	}
	if r.has(key) {
		return r.store.GetString(key)
	}
	return def
}

func (r *resolver) getInt(key string, def int) int {
	if v, ok := r.override(key); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			r.fail(key, v, "an integer")
			return def
		}
		return n
	}
	if r.has(key) {
		return r.store.GetInt(key)
	}
	return def
}

func (r *resolver) getFloat(key string, def float64) float64 {
	if v, ok := r.override(key); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			r.fail(key, v, "a number")
			return def
		}
		return f
	}
	if r.has(key) {
		return r.store.GetFloat(key)
	}
	return def
}

func (r *resolver) getBool(key string, def bool) bool {
	if v, ok := r.override(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			r.fail(key, v, "a boolean")
			return def
		}
		return b
	}
	if r.has(key) {
		return r.store.GetBool(key)
	}
	return def
}

func (r *resolver) getDuration(key string, def time.Duration) time.Duration {
	if v, ok := r.override(key); ok {
		d, err := parseDuration(v)
		if err != nil {
			r.fail(key, v, "a duration")
			return def
		}
		return d
	}
	if r.has(key) {
		return r.store.GetDuration(key)
	}
	return def
}

func (r *resolver) getList(key string, def []string) []string {
	if v, ok := r.override(key); ok {
		return splitList(v)
	}
	if r.has(key) {
		return r.store.GetStringSlice(key)
	}
	return def
}

func (r *resolver) extensions() domain.ExtensionMap {
	defaults := domain.DefaultExtensions()
	byKind := make(map[domain.Kind][]string, len(extensionKinds))
	for _, kind := range extensionKinds {
		byKind[kind] = r.getList(keyScanExtensions+"."+kind.String(), defaults[kind])
	}
	return domain.NewExtensionMap(byKind)
}
