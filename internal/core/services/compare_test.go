package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

func TestCompareService_Compare(t *testing.T) {
	llm := &mockLLM{replies: []string{"  Summary: ours wins.\n"}}
	svc := NewCompareService(llm, newPromptStore(t))

	brief, err := svc.Compare(context.Background(), domain.ComparisonInput{
		DocumentText: "Brochure: Fee 1.5L",
		Primary:      domain.NamedText{Name: "https://ours.example/course", Text: "Ours: live classes"},
		Competitor:   domain.NamedText{Name: "https://them.example/course", Text: "Theirs: recorded videos"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Summary: ours wins.", brief)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Brochure: Fee 1.5L")
	assert.Contains(t, prompt, "--- Our program (https://ours.example/course) ---\nOurs: live classes")
	assert.Contains(t, prompt, "--- Competitor program (https://them.example/course) ---\nTheirs: recorded videos")
	assert.Contains(t, prompt, "Why our program is better")
	assert.NotContains(t, prompt, "Follow-up request")
	assert.NotContains(t, prompt, "%!")
	assert.Zero(t, llm.genOpts[0].Temperature)
}

func TestCompareService_Compare_PlaceholdersAndFollowUp(t *testing.T) {
	llm := &mockLLM{replies: []string{"brief"}}
	svc := NewCompareService(llm, newPromptStore(t))

	_, err := svc.Compare(context.Background(), domain.ComparisonInput{
		Primary:    domain.NamedText{Text: "Ours"},
		Competitor: domain.NamedText{Name: "them", Text: FetchErrorPrefix + "timeout"},
		FollowUp:   "Focus on working professionals.",
	})
	require.NoError(t, err)

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "--- Uploaded document ---\n"+missingSourceText)
	assert.Contains(t, prompt, "Our program: Our program")
	assert.Contains(t, prompt, FetchErrorPrefix+"timeout")
	assert.Contains(t, prompt, "Follow-up request ---\nFocus on working professionals.")
}

func TestCompareService_Compare_Error(t *testing.T) {
	llm := &mockLLM{err: errors.New("503")}
	svc := NewCompareService(llm, newPromptStore(t))

	_, err := svc.Compare(context.Background(), domain.ComparisonInput{})

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "compare", genErr.Op)
	assert.Equal(t, 1, llm.calls())

	_, err = NewCompareService(nil, newPromptStore(t)).Compare(context.Background(), domain.ComparisonInput{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
