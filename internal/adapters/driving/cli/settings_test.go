package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func TestSettingsCmd_Show(t *testing.T) {
	m := newMockApp()
	m.settings.Store.Backend = domain.StoreBleve
	m.settings.Store.Path = ""

	for _, args := range [][]string{{"settings"}, {"settings", "show"}} {
		out, err := runCLI(m, args...)

		require.NoError(t, err)
		assert.Contains(t, out, "Config file: /home/user/.mediascope/config.toml")
		assert.Contains(t, out, "[store]")
		assert.Regexp(t, `backend:\s+bleve`, out)
		assert.Regexp(t, `path:\s+\(none\)`, out)
		assert.Contains(t, out, "[scan.extensions]")
		assert.Regexp(t, `video:\s+.*\.mp4`, out)
	}
}

func TestSettingsCmd_ShowError(t *testing.T) {
	m := newMockApp()
	m.settingsErr = errors.New("invalid toml")

	_, err := runCLI(m, "settings")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get settings")
}

func TestSettingsCmd_Set(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		raw      string
		expected any
	}{
		{name: "integer", key: "chunk.size", raw: "600", expected: int64(600)},
		{name: "bool", key: "explainer.enabled", raw: "false", expected: false},
		{name: "float", key: "explainer.temperature", raw: "0.2", expected: 0.2},
		{name: "string", key: "store.backend", raw: "bleve", expected: "bleve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockApp()

			out, err := runCLI(m, "settings", "set", tt.key, tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.settingsSvc.values[tt.key])
			assert.Contains(t, out, tt.key+" = "+tt.raw)
		})
	}
}

func TestSettingsCmd_SetError(t *testing.T) {
	m := newMockApp()
	m.settingsSvc.err = domain.ErrInvalidConfig

	_, err := runCLI(m, "settings", "set", "store.backend", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSettingsCmd_Keys(t *testing.T) {
	out, err := runCLI(newMockApp(), "settings", "keys")

	require.NoError(t, err)
	assert.Regexp(t, `store\.backend\s+MEDIASCOPE_STORE_BACKEND`, out)
	assert.Regexp(t, `scan\.extensions\.video\s+MEDIASCOPE_SCAN_EXTENSIONS_VIDEO`, out)
}
