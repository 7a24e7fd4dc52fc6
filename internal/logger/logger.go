// Package logger prints progress to stderr. Debug, Info, Warn and Section
// only print with --verbose; Error always prints. Stdout stays free for
// command output and the MCP stdio transport.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const redacted = "[REDACTED]"

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	secrets []string
)

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Redact masks every later occurrence of each secret, such as an API key
// echoed back in a provider error. Empty values are ignored.
func Redact(values ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, v := range values {
		if v != "" {
			secrets = append(secrets, v)
		}
	}
}

// Reset restores the defaults and forgets redacted values.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	verbose = false
	output = os.Stderr
	secrets = nil
}

func Debug(format string, args ...any) { write(false, "[DEBUG] "+format+"\n", args...) }

func Info(format string, args ...any) { write(false, "[INFO] "+format+"\n", args...) }

func Warn(format string, args ...any) { write(false, "[WARN] "+format+"\n", args...) }

func Error(format string, args ...any) { write(true, "[ERROR] "+format+"\n", args...) }

// Section starts a block of verbose output, e.g. "=== Indexing ===".
func Section(name string) { write(false, "\n=== %s ===\n", name) }

func write(always bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}

	line := fmt.Sprintf(format, args...)
	for _, s := range secrets {
		line = strings.ReplaceAll(line, s, redacted)
	}
	_, _ = io.WriteString(output, line)
}
