// Package mcp provides an MCP (Model Context Protocol) server adapter for briefly.
// It lets AI assistants run sales sessions, compare programs and draft
// interview questions through briefly's services.
package mcp

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")

// ErrUnknownSession is returned when a tool names a session the server does not hold.
var ErrUnknownSession = errors.New("mcp: unknown session")

// ErrServiceUnavailable is returned when a tool needs an optional port that was not provided.
var ErrServiceUnavailable = errors.New("mcp: service not available")
