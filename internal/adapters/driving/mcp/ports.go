package mcp

import (
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant runs sales sessions.
	Assistant driving.AssistantService

	// Extraction fetches page text outside a session.
	Extraction driving.ExtractionService

	// Interview generates and stores interview questions.
	Interview driving.InterviewService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	// Extraction and Interview are optional
	return nil
}
