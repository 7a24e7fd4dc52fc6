package domain

import "strings"

// Turn is one question/answer pair in a conversation.
type Turn struct {
	// Question is the user's message.
	Question string

	// Answer is the assistant's reply.
	Answer string

	// System marks the one-time background context entry.
	System bool
}

// Conversation is the append-only memory of one session.
// Turns are replayed to the LLM in the order they were appended.
// It is not safe for concurrent use; a session owns its conversation.
type Conversation struct {
	turns          []Turn
	systemInjected bool
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a completed question/answer pair.
func (c *Conversation) Append(question, answer string) {
	c.turns = append(c.turns, Turn{Question: question, Answer: answer})
}

// InjectSystemContext places a background context entry at the head of the
// conversation. Only the first call after construction or ResetSystemContext
// has an effect; it returns false when the context is already in place.
// A re-armed injection replaces the previous entry, so the conversation never
// holds more than one.
func (c *Conversation) InjectSystemContext(text string) bool {
	if c.systemInjected {
		return false
	}
	c.systemInjected = true

	entry := Turn{Question: "SYSTEM", Answer: text, System: true}
	if len(c.turns) > 0 && c.turns[0].System {
		c.turns[0] = entry
		return true
	}
	c.turns = append([]Turn{entry}, c.turns...)
	return true
}

// ResetSystemContext re-arms injection after the background changed, for
// example when a new comparison brief was generated.
func (c *Conversation) ResetSystemContext() {
	c.systemInjected = false
}

// SystemInjected reports whether the system context has been injected.
func (c *Conversation) SystemInjected() bool {
	return c.systemInjected
}

// Turns returns a copy of all turns in chronological order,
// the system context (if any) first.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// QA returns only the real question/answer pairs, without the system entry.
func (c *Conversation) QA() []Turn {
	out := make([]Turn, 0, len(c.turns))
	for _, t := range c.turns {
		if !t.System {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of turns including the system entry.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// AsPromptSegment renders the full history for inclusion in an LLM prompt.
func (c *Conversation) AsPromptSegment() string {
	if len(c.turns) == 0 {
		return ""
	}

	var b strings.Builder
	for i, t := range c.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if t.System {
			b.WriteString("System: ")
			b.WriteString(t.Answer)
			continue
		}
		b.WriteString("User: ")
		b.WriteString(t.Question)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.Answer)
	}
	return b.String()
}
