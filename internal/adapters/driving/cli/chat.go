package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about a program interactively",
	Long: `Start a chat session over a program page and an optional PDF brochure.

Questions are answered from the loaded sources. When they do not cover a
question the answer is generated from the full text instead and marked.

Commands:
  /compare [request]  write the comparison brief (needs --competitor)
  /save               write the session transcript
  /help               show commands
  /quit               end the session`,
	RunE: runChat,
}

var (
	chatPrimary    string
	chatCompetitor string
	chatPDF        string
	chatSave       bool
)

func init() {
	chatCmd.Flags().StringVar(&chatPrimary, "primary", "", "program page URL")
	chatCmd.Flags().StringVar(&chatCompetitor, "competitor", "", "competitor program page URL")
	chatCmd.Flags().StringVar(&chatPDF, "pdf", "", "PDF brochure to load")
	chatCmd.Flags().BoolVar(&chatSave, "save", false, "write the transcript when the session ends")
	rootCmd.AddCommand(chatCmd)
}

const chatHelp = `/compare [request]  write the comparison brief
/save               write the session transcript
/quit               end the session`

func runChat(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errNotConfigured("assistant")
	}
	if chatPrimary == "" && chatPDF == "" {
		return fmt.Errorf("%w: give --primary or --pdf", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session := assistantService.NewSession()
	defer assistantService.EndSession(session)

	req := driving.SourceRequest{
		DocumentPath:  chatPDF,
		PrimaryURL:    chatPrimary,
		CompetitorURL: chatCompetitor,
	}
	if err := assistantService.LoadSources(ctx, session, req); err != nil {
		return err
	}
	printFetchWarnings(cmd, session)

	cmd.Println(styles.Muted.Render("Preparing knowledge base..."))
	if err := assistantService.LoadKnowledgeBase(ctx, session); err != nil {
		return err
	}

	if promptWatcher != nil {
		go func() {
			err := promptWatcher.Watch(ctx, func(name string) {
				logger.Info("prompt %s reloaded", name)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	cmd.Println(styles.Title.Render("Session " + session.ID))
	cmd.Println(styles.Muted.Render("Type a question, /help for commands."))

	interactive := isTerminal(cmd)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			cmd.Print(styles.Subtitle.Render("> "))
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := handleChatLine(ctx, cmd, session, line)
		if err != nil {
			cmd.PrintErrln(styles.Error.Render("Error: " + err.Error()))
		}
		if quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if chatSave && !session.Saved {
		return saveSession(cmd, session)
	}
	return nil
}

// handleChatLine runs one REPL line and reports whether the session should end.
func handleChatLine(ctx context.Context, cmd *cobra.Command, session *domain.Session, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		answer, err := assistantService.Ask(ctx, session, line)
		if err != nil {
			return false, err
		}
		cmd.Println(answer.Text)
		if answer.Fallback {
			cmd.Println(styles.Muted.Render("(answered from the full text; the retrieved context did not cover this)"))
		}
		return false, nil
	}

	command, rest, _ := strings.Cut(line, " ")
	switch command {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		cmd.Println(chatHelp)
	case "/save":
		return false, saveSession(cmd, session)
	case "/compare":
		brief, err := assistantService.Compare(ctx, session, strings.TrimSpace(rest))
		if err != nil {
			return false, err
		}
		cmd.Println(styles.Brief.Render(brief))
	default:
		return false, fmt.Errorf("unknown command %s", command)
	}
	return false, nil
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.InOrStdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
