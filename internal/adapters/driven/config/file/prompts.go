package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from <dir>/<name>.txt so sales teams can
// tune wording without a rebuild. The directory is seeded with the defaults on
// first use, and an edited file that breaks its placeholders is ignored in
// favour of the default.
type PromptStore struct {
	dir string

	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	cache map[string]string
}

// defaultPrompts seed the prompt directory and stand in for any file that is
// missing or fails checkTemplate.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem: `You are a program advisor answering questions about a course brochure and program pages.
Answer ONLY from the context below. Do not use outside knowledge.
If the context does not answer the question, reply exactly: "` + domain.NoAnswerPhrase + `."

Context:
%s`,

	driven.PromptRAGFallback: `You are a program advisor. The brochure excerpts did not answer the question.
Answer using the full text below and your general knowledge. Say clearly which parts come from the text.

Full text:
%s`,

	driven.PromptComparison: `You are a program analyst helping a sales team pitch a program to learners.
Using only the documents below, write a sales brief that compares our program with the competitor's.

Our program: %[2]s
Competitor program: %[4]s

Follow this structure exactly:

Summary:
Two or three lines that lead with the strongest one or two differentiators.

Why our program is better:
Three or four bullets. Each bullet starts with a bold header naming a concrete career benefit,
followed by one sentence comparing it with the competitor.

Who it is for:
A table with columns "Our Program | Competitor Program" covering audience and curriculum strengths.

Taglines:
One line about learner aspirations and one line about a curriculum advantage.

Price justification (only if our program costs more):
Two or three specific reasons the fee is justified, ending with one line on return on investment.

Be concise and specific. If a document is missing or does not support a claim, leave the claim out.

--- Uploaded document ---
%[1]s

--- Our program (%[2]s) ---
%[3]s

--- Competitor program (%[4]s) ---
%[5]s
%[6]s`,

	driven.PromptInterviewQuestions: `Generate %d interview questions for the job description below.
Return a numbered list with one question per line and no other text.

Job description:
%s`,

	driven.PromptSessionContext: `You are assisting a sales counsellor during a live learner conversation.
Answer from the material below. Keep answers short and factual. If the material does not say, say so.

--- Our program ---
%[1]s

--- Competitor program ---
%[2]s

--- Uploaded document ---
%[3]s

--- Comparison brief ---
%[4]s`,
}

// templateArgs are sample arguments used to check an edited template. A
// template that formats them with a %!verb error has lost or mangled a
// placeholder.
var templateArgs = map[string][]any{
	driven.PromptRAGSystem:          {"context"},
	driven.PromptRAGFallback:        {"full text"},
	driven.PromptComparison:         {"doc", "ours", "ours text", "theirs", "theirs text", "follow-up"},
	driven.PromptInterviewQuestions: {10, "job description"},
	driven.PromptSessionContext:     {"ours", "theirs", "doc", "brief"},
}

// checkTemplate reports why tmpl cannot stand in for the prompt called name.
func checkTemplate(name, tmpl string) error {
	if strings.TrimSpace(tmpl) == "" {
		return fmt.Errorf("file is empty")
	}
	// The session background may be plain text with no placeholders.
	if name == driven.PromptSessionContext && !strings.Contains(tmpl, "%") {
		return nil
	}
	if args, ok := templateArgs[name]; ok {
		if out := fmt.Sprintf(tmpl, args...); strings.Contains(out, "%!") {
			return fmt.Errorf("placeholders do not match, output was %q", excerpt(out))
		}
	}
	// The chain service falls back when the answer carries this phrase.
	if name == driven.PromptRAGSystem && !strings.Contains(tmpl, domain.NoAnswerPhrase) {
		return fmt.Errorf("missing the phrase %q", domain.NoAnswerPhrase)
	}
	return nil
}

func excerpt(s string) string {
	if i := strings.Index(s, "%!"); i > 40 {
		s = "..." + s[i-40:]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}

// NewPromptStore does no I/O; the directory is created on the first Load.
// An empty dir means ~/.briefly/prompts.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".briefly", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the on-disk template, or the default when the file is missing,
// unreadable or fails checkTemplate. Only names without a default can fail.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.seed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if prompt, ok := s.cache[name]; ok {
		return prompt, nil
	}

	fallback, known := defaultPrompts[name]
	prompt, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		prompt = fallback
	case known:
		if bad := checkTemplate(name, prompt); bad != nil {
			logger.Warn("prompt %s.txt ignored, using the default: %v", name, bad)
			prompt = fallback
		}
	}

	// An init failure means the defaults were never written; do not cache
	// so a later Reload can pick up files the user creates by hand.
	if s.initErr == nil {
		s.cache[name] = prompt
	}
	return prompt, nil
}

// Reload drops cached templates so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
}

func (s *PromptStore) Dir() string {
	return s.dir
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// seed writes each default and the README unless a file already exists, so
// user edits survive upgrades.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("%v, using built-in prompts", s.initErr)
		return
	}

	files := map[string]string{"README.md": readme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content + "\n"
	}
	for file, content := range files {
		err := writeIfMissing(filepath.Join(s.dir, file), content)
		if err != nil {
			s.initErr = err
			logger.Warn("seed prompt %s: %v", file, err)
		}
	}
}

func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if os.IsExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var readme = `# Briefly prompts

Each .txt file here is a prompt template. Edit one and the change is used by
the next command, or straight away by a running ` + "`briefly chat`" + ` or
` + "`briefly mcp serve`" + `. Delete a file to get the default back.

| File | Used for | Placeholders |
|------|----------|--------------|
| rag_system.txt | answers restricted to retrieved chunks | %s context |
| rag_fallback.txt | answers when the chunks have nothing | %s full text |
| comparison.txt | the comparison brief | %[1]s document, %[2]s our name, %[3]s our text, %[4]s competitor name, %[5]s competitor text, %[6]s follow-up |
| interview_questions.txt | interview questions | %d count, %s job description |
| session_context.txt | chat background, refreshed after each comparison | %[1]s our text, %[2]s competitor text, %[3]s document, %[4]s brief (all optional) |

rag_system.txt must keep the sentence "` + domain.NoAnswerPhrase + `": an
answer containing it triggers the fallback prompt.

A file whose placeholders no longer line up is ignored with a warning and the
built-in default is used instead.
`

// Watch clears the cache whenever a prompt file changes. It returns once the
// watcher runs and stops when ctx is done. onChange, if set, receives the
// prompt name.
func (s *PromptStore) Watch(ctx context.Context, onChange func(name string)) error {
	s.initOnce.Do(s.seed)
	if s.initErr != nil {
		return s.initErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".txt" || event.Op == fsnotify.Chmod {
					continue
				}
				name := strings.TrimSuffix(filepath.Base(event.Name), ".txt")
				s.Reload()
				logger.Debug("prompt %s changed, cache cleared", name)
				if onChange != nil {
					onChange(name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("prompt watcher: %v", err)
			}
		}
	}()
	return nil
}
