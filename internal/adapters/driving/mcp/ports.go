package mcp

import (
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Query answers questions with evidence.
	Query driving.QueryService

	// Index serves raw nearest-neighbour searches. Optional.
	Index driving.IndexService

	// Scan extracts single files for the file resource. Optional.
	Scan driving.ScanService

	// Settings exposes the effective configuration. Optional.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
