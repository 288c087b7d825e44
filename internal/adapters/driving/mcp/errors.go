// Package mcp provides an MCP (Model Context Protocol) server adapter for mediascope.
// It exposes the local media index to AI assistants as tools and resources.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
