package mcp

import (
	"github.com/custodia-labs/recall-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Retrieval answers similarity queries.
	Retrieval driving.RetrievalService

	// Activity records captures.
	Activity driving.ActivityService

	// Project lists projects.
	Project driving.ProjectService

	// Document reads document text.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// The rest are optional; their tools and resources degrade gracefully.
	return nil
}
