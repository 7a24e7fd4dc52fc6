package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query knowledge base indexes",
	Long: `Knowledge base indexes are stored in the configured blob storage under
<storage.prefix>/<name>/ and reused by every later session.`,
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [name]",
	Short: "Build and persist an index from PDFs and web pages",
	Long: `Build an index from every --pdf and --url source and persist it.

When name is omitted it is derived from the first source, for example
https://timespro.com/executive-education/iim-x becomes
timespro_com_executive_education_iim_x.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexBuild,
}

var indexQueryCmd = &cobra.Command{
	Use:   "query <name> <question>",
	Short: "Show the chunks nearest to a question",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexQuery,
}

var (
	indexPDFs []string
	indexURLs []string
	indexTopK int
)

func init() {
	indexBuildCmd.Flags().StringSliceVar(&indexPDFs, "pdf", nil, "PDF file to index (repeatable)")
	indexBuildCmd.Flags().StringSliceVar(&indexURLs, "url", nil, "web page to index (repeatable)")
	indexQueryCmd.Flags().IntVarP(&indexTopK, "top-k", "k", 4, "number of chunks to return")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}
	if extractionService == nil {
		return errNotConfigured("extraction")
	}
	if len(indexPDFs) == 0 && len(indexURLs) == 0 {
		return fmt.Errorf("%w: at least one --pdf or --url is required", domain.ErrInvalidInput)
	}

	var docs []domain.SourceDocument
	for _, path := range indexPDFs {
		doc, err := extractPDFFile(cmd, path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}
	for _, doc := range extractionService.FetchURLs(cmd.Context(), indexURLs) {
		if doc.IsFetchError() {
			cmd.PrintErrln(styles.Warning.Render("skipping " + doc.Origin + ": " + doc.Text))
			continue
		}
		docs = append(docs, doc)
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	} else {
		origin := ""
		if len(indexURLs) > 0 {
			origin = indexURLs[0]
		} else {
			origin = indexPDFs[0]
		}
		name = domain.IndexName(origin)
	}

	handle, err := indexService.Build(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := indexService.Persist(cmd.Context(), handle, name); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	cmd.Println(styles.Success.Render(fmt.Sprintf("Indexed %d chunks into %s", handle.Len(), name)))
	cmd.Printf("  Model: %s (%d dimensions)\n", handle.Model(), handle.Dimensions())
	return nil
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errNotConfigured("index")
	}

	handle, err := indexService.Load(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load index %s: %w", args[0], err)
	}

	chunks, err := handle.Retrieve(cmd.Context(), args[1], indexTopK)
	if err != nil {
		return err
	}

	if len(chunks) == 0 {
		cmd.Println("No chunks found.")
		return nil
	}

	for i, c := range chunks {
		cmd.Printf("%d. %s\n", i+1, styles.Subtitle.Render(fmt.Sprintf("%s #%d", c.Origin, c.Ordinal)))
		cmd.Printf("   %s\n", truncate(strings.Join(strings.Fields(c.Text), " "), 240))
	}
	return nil
}
