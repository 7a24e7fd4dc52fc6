package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Write a comparison brief of a program against a competitor",
	Long: `Fetch the program page and the competitor page, optionally add a PDF
brochure, and ask the LLM for a structured comparison brief.

An unreachable page does not stop the brief; the model is told its content
is unavailable.`,
	Example: `  briefly compare \
    --primary https://timespro.com/executive-education/iim-x \
    --competitor https://other.example/programs/pgp \
    --follow-up "Which one suits a working professional?" --save`,
	RunE: runCompare,
}

var (
	comparePrimary    string
	compareCompetitor string
	comparePDF        string
	compareFollowUp   string
	compareSave       bool
)

func init() {
	compareCmd.Flags().StringVar(&comparePrimary, "primary", "", "program page URL")
	compareCmd.Flags().StringVar(&compareCompetitor, "competitor", "", "competitor program page URL")
	compareCmd.Flags().StringVar(&comparePDF, "pdf", "", "PDF brochure to include")
	compareCmd.Flags().StringVar(&compareFollowUp, "follow-up", "", "request answered after the brief")
	compareCmd.Flags().BoolVar(&compareSave, "save", false, "write the session transcript")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errNotConfigured("assistant")
	}
	if comparePrimary == "" && compareCompetitor == "" && comparePDF == "" {
		return fmt.Errorf("%w: give --primary, --competitor or --pdf", domain.ErrInvalidInput)
	}

	ctx := cmd.Context()
	session := assistantService.NewSession()
	defer assistantService.EndSession(session)

	req := driving.SourceRequest{
		DocumentPath:  comparePDF,
		PrimaryURL:    comparePrimary,
		CompetitorURL: compareCompetitor,
	}
	if err := assistantService.LoadSources(ctx, session, req); err != nil {
		return err
	}
	printFetchWarnings(cmd, session)

	brief, err := assistantService.Compare(ctx, session, compareFollowUp)
	if err != nil {
		return err
	}

	cmd.Println(heading("Comparison"))
	cmd.Println(brief)

	if compareSave {
		return saveSession(cmd, session)
	}
	return nil
}

// printFetchWarnings reports pages that could not be fetched.
func printFetchWarnings(cmd *cobra.Command, session *domain.Session) {
	for _, doc := range []*domain.SourceDocument{session.Primary, session.Competitor} {
		if doc != nil && doc.IsFetchError() {
			cmd.PrintErrln(styles.Warning.Render(doc.Origin + ": " + doc.Text))
		}
	}
}

func saveSession(cmd *cobra.Command, session *domain.Session) error {
	uri, err := assistantService.Save(cmd.Context(), session)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	cmd.Println(styles.Success.Render("Session saved to " + uri))
	return nil
}
