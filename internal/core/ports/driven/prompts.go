package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptRAGSystem restricts the model to the retrieved context and names the
	// phrase it must use when the context has no answer.
	// The prompt template expects a %s placeholder for the retrieved context.
	PromptRAGSystem = "rag_system"

	// PromptRAGFallback answers without the context restriction over the full text.
	// The prompt template expects a %s placeholder for the full extracted text.
	PromptRAGFallback = "rag_fallback"

	// PromptComparison produces the structured comparison brief.
	// The prompt template uses indexed placeholders: %[1]s document text,
	// %[2]s primary name, %[3]s primary text, %[4]s competitor name,
	// %[5]s competitor text, %[6]s follow-up request.
	PromptComparison = "comparison"

	// PromptInterviewQuestions generates numbered interview questions.
	// The prompt template expects %d (question count) and %s (job description).
	PromptInterviewQuestions = "interview_questions"

	// PromptSessionContext is the chat background, injected once per comparison.
	// The prompt template uses indexed placeholders: %[1]s primary text,
	// %[2]s competitor text, %[3]s document text, %[4]s comparison brief.
	PromptSessionContext = "session_context"
)
