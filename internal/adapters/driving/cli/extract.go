package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract <pdf-file|url>...",
	Short: "Print the text extracted from PDFs or web pages",
	Long: `Extract plain text from local PDF files and web pages.

Arguments starting with http:// or https:// are fetched; anything else is
read as a PDF. A page that cannot be fetched prints its error placeholder
instead of failing the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractionService == nil {
		return errNotConfigured("extraction")
	}

	for i, arg := range args {
		doc, err := extractSource(cmd, arg)
		if err != nil {
			return err
		}
		if len(args) > 1 {
			if i > 0 {
				cmd.Println()
			}
			cmd.Println(heading(doc.Origin))
		}
		if doc.IsFetchError() {
			cmd.Println(styles.Warning.Render(doc.Text))
			continue
		}
		cmd.Println(doc.Text)
	}
	return nil
}

// extractSource fetches a URL or extracts a local PDF.
func extractSource(cmd *cobra.Command, arg string) (domain.SourceDocument, error) {
	if isURL(arg) {
		return extractionService.FetchURL(cmd.Context(), arg), nil
	}
	return extractPDFFile(cmd, arg)
}

func extractPDFFile(cmd *cobra.Command, path string) (domain.SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: open %s: %w", domain.ErrExtraction, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: stat %s: %w", domain.ErrExtraction, path, err)
	}

	return extractionService.ExtractPDF(cmd.Context(), path, f, info.Size())
}
