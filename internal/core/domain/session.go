package domain

import "time"

// Session is one user's continuous interaction. It replaces ambient UI state:
// every service call receives the session explicitly.
//
// Lifecycle: create, mutate through service calls, flush via the session log,
// discard. A session is owned by one caller and is not safe for concurrent use.
type Session struct {
	// ID is a short random identifier used in the transcript path.
	ID string

	// Device is a label for the machine the session ran on.
	Device string

	// StartedAt is when the session was created.
	StartedAt time.Time

	// Document is the uploaded local document, if any.
	Document *SourceDocument

	// Primary is the selected reference program page, if any.
	Primary *SourceDocument

	// Competitor is the competitor program page, if any.
	Competitor *SourceDocument

	// Comparison is the most recent comparison brief.
	Comparison string

	// IndexName is the knowledge base loaded for this session.
	IndexName string

	// Conversation is the session's question/answer memory.
	Conversation *Conversation

	// Saved marks that the transcript has been written.
	Saved bool
}

// NewSession creates an empty session.
func NewSession(id, device string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Device:       device,
		StartedAt:    now,
		Conversation: NewConversation(),
	}
}

// Sources returns the origins of every loaded source in a stable order.
func (s *Session) Sources() []string {
	var out []string
	for _, d := range []*SourceDocument{s.Document, s.Primary, s.Competitor} {
		if d != nil && d.Origin != "" {
			out = append(out, d.Origin)
		}
	}
	return out
}

// Metadata builds the transcript header for this session.
func (s *Session) Metadata() SessionMetadata {
	meta := SessionMetadata{
		SessionID: s.ID,
		Device:    s.Device,
		StartedAt: s.StartedAt,
		Sources:   s.Sources(),
	}
	if s.IndexName != "" {
		meta.Extra = map[string]string{"knowledge_base": s.IndexName}
	}
	return meta
}

// SessionMetadata is the header of a session transcript.
type SessionMetadata struct {
	// SessionID identifies the session.
	SessionID string

	// Device is the device label.
	Device string

	// StartedAt is the session start time.
	StartedAt time.Time

	// Sources lists the chosen sources (file paths and URLs).
	Sources []string

	// Extra holds additional key/value pairs written after the sources.
	Extra map[string]string
}
