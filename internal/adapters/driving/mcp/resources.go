package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for briefly resources.
	uriScheme = "briefly://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing open sessions.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sessions",
		Name:        "sessions",
		Description: "Open sales sessions and their sources",
		MIMEType:    "application/json",
	}, s.handleSessionsResource)

	// Template for a session's comparison brief.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sessions/{sessionId}/comparison",
		Name:        "session-comparison",
		Description: "Most recent comparison brief of a session",
		MIMEType:    "text/plain",
	}, s.handleComparisonResource)

	if s.ports.Interview != nil {
		// Template for stored job records.
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "jobs/{jobId}",
			Name:        "job-record",
			Description: "Job descriptions and interview questions saved under a job id",
			MIMEType:    "application/json",
		}, s.handleJobResource)
	}
}

// handleSessionsResource returns every open session.
func (s *Server) handleSessionsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type sessionInfo struct {
		ID            string   `json:"id"`
		Sources       []string `json:"sources"`
		KnowledgeBase string   `json:"knowledge_base,omitempty"`
		Questions     int      `json:"questions"`
		Saved         bool     `json:"saved"`
	}

	ids := s.sessionIDs()
	infos := make([]sessionInfo, 0, len(ids))
	for _, id := range ids {
		//nolint:errcheck // session ended between listing and reading
		s.withSession(id, func(session *domain.Session) error {
			infos = append(infos, sessionInfo{
				ID:            session.ID,
				Sources:       session.Sources(),
				KnowledgeBase: session.IndexName,
				Questions:     len(session.Conversation.QA()),
				Saved:         session.Saved,
			})
			return nil
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sessions: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleComparisonResource returns a session's comparison brief.
func (s *Server) handleComparisonResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract sessionId from URI: briefly://sessions/{sessionId}/comparison
	sessionID := extractSessionID(req.Params.URI)
	if sessionID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var brief string
	err := s.withSession(sessionID, func(session *domain.Session) error {
		brief = session.Comparison
		return nil
	})
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     brief,
		}},
	}, nil
}

// handleJobResource returns a stored job record.
func (s *Server) handleJobResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Interview == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract jobId from URI: briefly://jobs/{jobId}
	jobID := extractJobID(req.Params.URI)
	if jobID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Interview.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling job: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSessionID extracts the session ID from a URI like briefly://sessions/{sessionId}/comparison.
func extractSessionID(uri string) string {
	const prefix = uriScheme + "sessions/"
	const suffix = "/comparison"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractJobID extracts the job ID from a URI like briefly://jobs/{jobId}.
func extractJobID(uri string) string {
	const prefix = uriScheme + "jobs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
