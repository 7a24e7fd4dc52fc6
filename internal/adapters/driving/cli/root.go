// Package cli implements the briefly command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Services are the driving ports commands call.
type Services struct {
	Settings   driving.SettingsService
	Extraction driving.ExtractionService
	Index      driving.IndexService
	Assistant  driving.AssistantService
	Interview  driving.InterviewService

	// Prompts is watched for edits during chat. May be nil.
	Prompts PromptWatcher
}

// PromptWatcher reloads prompt templates when their files change.
type PromptWatcher interface {
	Watch(ctx context.Context, onChange func(name string)) error
}

// Bootstrap builds services for the given config directory. The returned
// function releases them.
type Bootstrap func(ctx context.Context, configDir string) (*Services, func(), error)

var (
	bootstrap Bootstrap
	cleanup   func()

	settingsService   driving.SettingsService
	extractionService driving.ExtractionService
	indexService      driving.IndexService
	assistantService  driving.AssistantService
	interviewService  driving.InterviewService
	promptWatcher     PromptWatcher
)

var rootCmd = &cobra.Command{
	Use:   "briefly",
	Short: "Sales and hiring assistant for program pages, brochures and job descriptions",
	Long: `briefly extracts text from PDFs and web pages, answers questions about them
with retrieval-augmented generation, writes comparison briefs against competitor
programs and generates interview questions from job descriptions.

Every chat session can be saved as a transcript to the configured storage.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) { release() },
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.briefly)")
}

// SetVersion sets the version reported by 'briefly version'.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	extractionService = s.Extraction
	indexService = s.Index
	assistantService = s.Assistant
	interviewService = s.Interview
	promptWatcher = s.Prompts
}

// Execute runs the root command.
// Services built by bootstrap are released even when the command fails.
func Execute(ctx context.Context) error {
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

func release() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd == versionCmd {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

// errNotConfigured is returned when a command's service was not wired.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
