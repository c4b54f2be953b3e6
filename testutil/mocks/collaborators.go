// Package mocks provides scriptable collaborator doubles for engine
// tests: text generation, research lookup, and speech synthesis.
package mocks

import (
	"context"
	"sync"

	"github.com/agoralive/agora/research"
	"github.com/agoralive/agora/types"
)

// Provider is a scriptable llm.Provider. Responses are served in order;
// when the script runs out, Default is served. Handle, when set, takes
// precedence over the script.
type Provider struct {
	mu        sync.Mutex
	script    []string
	Default   string
	Err       error
	Handle    func(system, user string) (string, error)
	calls     []ProviderCall
}

// ProviderCall records one Complete invocation.
type ProviderCall struct {
	System string
	User   string
}

// NewProvider creates a provider that serves the given responses in
// order.
func NewProvider(responses ...string) *Provider {
	return &Provider{script: responses}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(_ context.Context, system, user string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, ProviderCall{System: system, User: user})
	if p.Handle != nil {
		return p.Handle(system, user)
	}
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.script) > 0 {
		next := p.script[0]
		p.script = p.script[1:]
		return next, nil
	}
	return p.Default, nil
}

// Calls returns a copy of all recorded invocations.
func (p *Provider) Calls() []ProviderCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ProviderCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of Complete invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Search is a scriptable research.SearchProvider.
type Search struct {
	mu     sync.Mutex
	Result *research.SearchResult
	Err    error
	count  int
}

// Search implements research.SearchProvider.
func (s *Search) Search(context.Context, string, types.ResearchDepth) (*research.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}

// CallCount returns the number of Search invocations.
func (s *Search) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// TTS is a scriptable speech provider that returns Audio for every
// chunk.
type TTS struct {
	mu     sync.Mutex
	Audio  []byte
	Err    error
	inputs []string
}

// Synthesize implements speech.Provider.
func (t *TTS) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputs = append(t.inputs, text)
	if t.Err != nil {
		return nil, t.Err
	}
	return t.Audio, nil
}

// Inputs returns every text chunk passed to Synthesize.
func (t *TTS) Inputs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.inputs))
	copy(out, t.inputs)
	return out
}
