package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

// fakeEmbedder gives every distinct word its own dimension so that texts
// sharing words score higher under cosine similarity.
type fakeEmbedder struct {
	dims  int
	model string
	err   error

	mu         sync.Mutex
	vocab      map[string]int
	batchSizes []int
	// short drops the last vector of every batch.
	short bool
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dims: 128, model: "fake-embed", vocab: make(map[string]int)}
}

func (f *fakeEmbedder) vector(text string) []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := make([]float32, f.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		i, ok := f.vocab[w]
		if !ok {
			i = len(f.vocab) % f.dims
			f.vocab[w] = i
		}
		v[i]++
	}
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(texts))
	f.mu.Unlock()

	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, f.vector(t))
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return f.model }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// mockLLM records every call and replies from a queue.
type mockLLM struct {
	mu        sync.Mutex
	replies   []string
	err       error
	chats     [][]driven.ChatMessage
	chatOpts  []driven.ChatOptions
	prompts   []string
	genOpts   []driven.GenerateOptions
	failAfter int
}

func (m *mockLLM) next() (string, error) {
	calls := len(m.chats) + len(m.prompts)
	if m.err != nil && calls > m.failAfter {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("mockLLM: no reply queued")
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return reply, nil
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.genOpts = append(m.genOpts, opts)
	return m.next()
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]driven.ChatMessage, len(messages))
	copy(cp, messages)
	m.chats = append(m.chats, cp)
	m.chatOpts = append(m.chatOpts, opts)
	return m.next()
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chats) + len(m.prompts)
}

// staticRetriever returns a fixed list of chunks. scores, when set, are
// reported by RetrieveScored in the same positions; missing scores are 0.
type staticRetriever struct {
	chunks []domain.Chunk
	scores []float32
	err    error
	ks     []int
}

func (r *staticRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	scored, err := r.RetrieveScored(ctx, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

func (r *staticRetriever) RetrieveScored(_ context.Context, _ string, k int) ([]domain.ScoredChunk, error) {
	r.ks = append(r.ks, k)
	if r.err != nil {
		return nil, r.err
	}
	n := min(k, len(r.chunks))
	out := make([]domain.ScoredChunk, n)
	for i := 0; i < n; i++ {
		out[i] = domain.ScoredChunk{Chunk: r.chunks[i]}
		if i < len(r.scores) {
			out[i].Score = r.scores[i]
		}
	}
	return out, nil
}

// mockPrompts serves prompt templates from a map.
type mockPrompts struct {
	templates map[string]string
	reloads   int
}

func (p *mockPrompts) Load(name string) (string, error) {
	t, ok := p.templates[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return t, nil
}

func (p *mockPrompts) Reload() { p.reloads++ }
