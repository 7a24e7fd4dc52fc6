package domain

// NamedText is a labelled block of source text used in prompts.
type NamedText struct {
	// Name is the label shown to the model (usually a URL).
	Name string

	// Text is the extracted content; may be empty.
	Text string
}

// ComparisonInput is the input to the comparison brief generator.
type ComparisonInput struct {
	// DocumentText is the text of the uploaded local document; may be empty.
	DocumentText string

	// Primary is the reference program being pitched.
	Primary NamedText

	// Competitor is the competing program.
	Competitor NamedText

	// FollowUp is an optional question answered after the brief.
	FollowUp string
}

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	// Text is the model's answer.
	Text string

	// Chunks are the retrieved chunks used as context, nearest first.
	Chunks []Chunk

	// Fallback is true when the constrained answer reported missing
	// information and an unconstrained answer replaced it.
	Fallback bool
}

// NoAnswerPhrase is the fixed phrase the context-restricted answer must use
// when the retrieved context does not cover the question. Matching it in the
// model's reply triggers the unrestricted fallback answer.
const NoAnswerPhrase = "The document does not contain this information"
