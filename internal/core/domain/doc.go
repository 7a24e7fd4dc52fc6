// Package domain defines the core business entities for Briefly.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: Text extracted from a PDF or a web page
//   - Chunk: A retrievable slice of a SourceDocument
//   - Conversation: Append-only question/answer memory for one session
//   - Session: One user's interaction, flushed to a transcript at the end
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
