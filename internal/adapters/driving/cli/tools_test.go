package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/adapters/driven/ai"
	"github.com/custodia-labs/mediascope/internal/core/domain"
)

func TestToolsCmd(t *testing.T) {
	m := newMockApp()
	m.caps = domain.Capabilities{
		FFprobe:  domain.ToolStatus{Available: true},
		SevenZip: domain.ToolStatus{Error: "7z not found in PATH"},
		Unrar:    domain.ToolStatus{Available: true},
	}
	m.statuses = []ai.ServiceStatus{
		{Name: "embedding", Target: "nomic-embed-text", Enabled: true},
		{Name: "explainer", Target: "llama3.2", Enabled: true, Err: errors.New("connection refused")},
		{Name: "other", Enabled: false},
	}

	out, err := runCLI(m, "tools")

	require.NoError(t, err)
	assert.Contains(t, out, "Tools")
	assert.Regexp(t, `ffprobe\s+available`, out)
	assert.Regexp(t, `7z\s+7z not found in PATH`, out)
	assert.Contains(t, out, "Services")
	assert.Regexp(t, `embedding\s+reachable \(nomic-embed-text\)`, out)
	assert.Regexp(t, `explainer\s+unreachable: connection refused \(llama3.2\)`, out)
	assert.Regexp(t, `other\s+disabled`, out)
	assert.Contains(t, out, "Index")
	assert.Regexp(t, `documents\s+no index`, out)
	assert.False(t, m.lastCreate)
}

func TestToolsCmd_IndexStatus(t *testing.T) {
	t.Run("last run", func(t *testing.T) {
		m := newMockApp()
		m.indexer.status = &domain.IndexStatus{
			Available: true,
			Documents: 12,
			LastRun:   &domain.IndexRun{ID: "r1", Documents: 12, Model: "hash-384", CreatedAt: time.Now()},
		}

		out, err := runCLI(m, "tools")

		require.NoError(t, err)
		assert.Regexp(t, `documents\s+12, last run \d{4}-\d{2}-\d{2} \d{2}:\d{2} \(hash-384\)`, out)
	})

	t.Run("unreadable index", func(t *testing.T) {
		m := newMockApp()
		m.indexer.err = errors.New("database is locked")

		out, err := runCLI(m, "tools")

		require.NoError(t, err)
		assert.Contains(t, out, "unreadable: database is locked")
	})
}
