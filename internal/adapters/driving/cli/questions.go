package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions from job descriptions",
}

var questionsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate interview questions",
	Long: `Generate interview questions from a job description given as a PDF, a
text file or inline text.

With --job-id the questions can be saved (--save) and the original file
uploaded (--upload) under that id.`,
	RunE: runQuestionsGenerate,
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show saved job descriptions and questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsShow,
}

var (
	questionsPDF         string
	questionsTextFile    string
	questionsDescription string
	questionsCount       int
	questionsJobID       string
	questionsSave        bool
	questionsUpload      bool
)

func init() {
	questionsGenerateCmd.Flags().StringVar(&questionsPDF, "pdf", "", "job description PDF")
	questionsGenerateCmd.Flags().StringVar(&questionsTextFile, "text", "", "job description text file")
	questionsGenerateCmd.Flags().StringVarP(&questionsDescription, "description", "d", "", "job description text")
	questionsGenerateCmd.Flags().IntVarP(&questionsCount, "count", "n", 10, "number of questions")
	questionsGenerateCmd.Flags().StringVar(&questionsJobID, "job-id", "", "job id to save under")
	questionsGenerateCmd.Flags().BoolVar(&questionsSave, "save", false, "save the questions under --job-id")
	questionsGenerateCmd.Flags().BoolVar(&questionsUpload, "upload", false, "upload the job description file under --job-id")

	questionsCmd.AddCommand(questionsGenerateCmd)
	questionsCmd.AddCommand(questionsShowCmd)
	rootCmd.AddCommand(questionsCmd)
}

func runQuestionsGenerate(cmd *cobra.Command, _ []string) error {
	if interviewService == nil {
		return errNotConfigured("interview")
	}
	if (questionsSave || questionsUpload) && questionsJobID == "" {
		return fmt.Errorf("%w: --save and --upload need --job-id", domain.ErrInvalidInput)
	}

	description, file, err := readJobDescription(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	questions, err := interviewService.Generate(ctx, description, questionsCount)
	if err != nil {
		return err
	}

	cmd.Println(heading("Interview Questions"))
	for _, q := range questions {
		cmd.Println(q)
	}

	if questionsUpload {
		if file == "" {
			return fmt.Errorf("%w: --upload needs --pdf or --text", domain.ErrInvalidInput)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		uri, err := interviewService.UploadDescription(ctx, questionsJobID, filepath.Base(file), data)
		if err != nil {
			return fmt.Errorf("upload job description: %w", err)
		}
		cmd.Println(styles.Success.Render("Uploaded job description to " + uri))
	}

	if questionsSave {
		record, err := interviewService.SaveQuestions(ctx, questionsJobID, description, questions)
		if err != nil {
			return fmt.Errorf("save questions: %w", err)
		}
		cmd.Println(styles.Success.Render(fmt.Sprintf("Saved to job %s (%d roles)", record.JobID, len(record.Roles))))
	}
	return nil
}

// readJobDescription returns the description text and, when read from a
// file, the file path.
func readJobDescription(cmd *cobra.Command) (text, file string, err error) {
	switch {
	case questionsPDF != "":
		if extractionService == nil {
			return "", "", errNotConfigured("extraction")
		}
		doc, err := extractPDFFile(cmd, questionsPDF)
		if err != nil {
			return "", "", err
		}
		return doc.Text, questionsPDF, nil
	case questionsTextFile != "":
		data, err := os.ReadFile(questionsTextFile)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", questionsTextFile, err)
		}
		return string(data), questionsTextFile, nil
	case strings.TrimSpace(questionsDescription) != "":
		return questionsDescription, "", nil
	default:
		return "", "", fmt.Errorf("%w: give --pdf, --text or --description", domain.ErrInvalidInput)
	}
}

func runQuestionsShow(cmd *cobra.Command, args []string) error {
	if interviewService == nil {
		return errNotConfigured("interview")
	}

	record, err := interviewService.GetJob(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get job %s: %w", args[0], err)
	}

	cmd.Println(heading("Job " + record.JobID))
	for i, role := range record.Roles {
		cmd.Println()
		cmd.Println(styles.Subtitle.Render(fmt.Sprintf("Role %d", i+1)))
		cmd.Println(styles.Muted.Render(truncate(strings.Join(strings.Fields(role.JobDescription), " "), 200)))
		for _, q := range role.Questions {
			cmd.Printf("  %s\n", q)
		}
	}
	return nil
}
