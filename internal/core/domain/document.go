package domain

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SourceDocument is a piece of ingested content.
// It is created once per extraction call and never modified afterwards.
type SourceDocument struct {
	// Origin is the file path or URL the text came from.
	Origin string

	// Text is the extracted plain text.
	Text string

	// ExtractedAt is when the text was extracted.
	ExtractedAt time.Time
}

// IsEmpty returns true if the document carries no usable text.
func (d SourceDocument) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// FetchErrorPrefix starts the placeholder text of a page that could not be fetched.
const FetchErrorPrefix = "Error fetching URL content: "

// IsFetchError reports whether the document is a fetch-failure placeholder.
func (d SourceDocument) IsFetchError() bool {
	return strings.HasPrefix(d.Text, FetchErrorPrefix)
}

// Chunk is a bounded slice of a SourceDocument's text and the unit of retrieval.
type Chunk struct {
	// ID identifies the chunk by (Origin, Ordinal). Two retrievers returning
	// the same slice of the same document agree on ID.
	ID string `json:"id"`

	// Origin is the SourceDocument origin this chunk was cut from.
	Origin string `json:"origin"`

	// Ordinal is the zero-based position within the document.
	Ordinal int `json:"ordinal"`

	// Text is the chunk content.
	Text string `json:"text"`
}

// ScoredChunk is a retrieved chunk with its similarity to the query.
// Higher scores are nearer.
type ScoredChunk struct {
	Chunk
	Score float32
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// IndexName derives the stable name of a vector index from its originating
// URL or file path. URLs use host and path segments ("www." dropped); files
// use the base name without extension. Runs of non-alphanumerics become "_".
//
//	https://timespro.com/executive-education/iim-x → timespro_com_executive_education_iim_x
func IndexName(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return ""
	}

	var raw string
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		raw = host + "/" + strings.Trim(u.Path, "/")
	} else {
		base := filepath.Base(origin)
		raw = strings.TrimSuffix(base, filepath.Ext(base))
	}

	slug := nonSlugChars.ReplaceAllString(strings.ToLower(raw), "_")
	return strings.Trim(slug, "_")
}
