package services

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure SessionLogService implements the interface.
var _ driving.SessionLogService = (*SessionLogService)(nil)

// DefaultSessionBasePath is the key prefix for session transcripts.
const DefaultSessionBasePath = "logs"

// SessionLogService writes one plain-text transcript per session to a blob store.
type SessionLogService struct {
	blobs    driven.BlobStore
	basePath string
}

// NewSessionLogService creates a new session log sink under basePath.
func NewSessionLogService(blobs driven.BlobStore, basePath string) *SessionLogService {
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		basePath = DefaultSessionBasePath
	}
	return &SessionLogService{blobs: blobs, basePath: basePath}
}

// NewSessionID returns a short random session id.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Key returns the blob key for a session: <base>/<YYYY-MM-DD>/<id>.txt.
func (s *SessionLogService) Key(meta domain.SessionMetadata) string {
	return path.Join(s.basePath, meta.StartedAt.Format("2006-01-02"), meta.SessionID+".txt")
}

// LogSession writes the transcript and returns its URI. A transcript is
// written once; an existing key returns domain.ErrAlreadyExists.
func (s *SessionLogService) LogSession(
	ctx context.Context, meta domain.SessionMetadata, comparison string, turns []domain.Turn,
) (string, error) {
	if meta.SessionID == "" || strings.ContainsAny(meta.SessionID, `/\`) {
		return "", fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, meta.SessionID)
	}

	key := s.Key(meta)
	exists, err := s.blobs.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		return "", fmt.Errorf("session log %s: %w", key, domain.ErrAlreadyExists)
	}

	report := FormatSessionReport(meta, comparison, turns)
	if err := s.blobs.Put(ctx, key, []byte(report)); err != nil {
		return "", domain.NewStorageWriteError(key, err)
	}

	uri := s.blobs.URI(key)
	logger.Info("session %s logged to %s", meta.SessionID, uri)
	return uri, nil
}

// FormatSessionReport renders the flat transcript text: header, sources,
// extra metadata, comparison, then the question/answer pairs.
func FormatSessionReport(meta domain.SessionMetadata, comparison string, turns []domain.Turn) string {
	// A Caser holds state and must not be shared between goroutines.
	titler := cases.Title(language.English)

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("Session ID: %s", meta.SessionID)
	add("Device Type: %s", meta.Device)
	add("Run Datetime: %s", meta.StartedAt.Format("2006-01-02 15:04:05"))
	if len(meta.Sources) > 0 {
		add("Sources:")
		for _, src := range meta.Sources {
			add("- %s", src)
		}
	}
	keys := make([]string, 0, len(meta.Extra))
	for k := range meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add("%s: %s", titler.String(strings.ReplaceAll(k, "_", " ")), meta.Extra[k])
	}
	add("")

	add("=== COMPARISON OUTPUT ===")
	if c := strings.TrimSpace(comparison); c != "" {
		add("%s", c)
	} else {
		add("[Empty]")
	}
	add("")

	add("=== CHATBOT Q&A ===")
	n := 0
	for _, t := range turns {
		if t.System {
			continue
		}
		n++
		add("Q%d: %s", n, t.Question)
		add("A%d: %s", n, t.Answer)
		add("")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
