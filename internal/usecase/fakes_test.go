package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"customs-gateway/internal/domain/entity"
)

type reply struct {
	text string
	err  error
}

// scriptedCompleter answers by the first line of the system prompt, so each
// pipeline stage can be scripted independently.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies map[string]reply
	calls   map[string]int
	convs   []entity.Conversation
}

func newScriptedCompleter() *scriptedCompleter {
	return &scriptedCompleter{replies: map[string]reply{}, calls: map[string]int{}}
}

func promptKey(system string) string {
	line, _, _ := strings.Cut(system, "\n")
	return line
}

func (s *scriptedCompleter) on(system, text string) *scriptedCompleter {
	s.replies[promptKey(system)] = reply{text: text}
	return s
}

func (s *scriptedCompleter) fail(system string, err error) *scriptedCompleter {
	s.replies[promptKey(system)] = reply{err: err}
	return s
}

func (s *scriptedCompleter) Complete(_ context.Context, conv entity.Conversation) (string, error) {
	key := promptKey(conv.System())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
	s.convs = append(s.convs, conv)
	r, ok := s.replies[key]
	if !ok {
		return "", fmt.Errorf("unscripted prompt %q", key)
	}
	return r.text, r.err
}

func (s *scriptedCompleter) callCount(system string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[promptKey(system)]
}

// Prompt keys for the generated prompts.
var (
	extractKey     = extractFieldsPrompt("")
	declarationKey = declarationReportPrompt("", "")
	guidanceKey    = guidanceReportPrompt("")
	broadenKey     = fmt.Sprintf(broadenPrompt, 3)
)

type fakeRetriever struct {
	mu      sync.Mutex
	answer  string
	err     error
	queries []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.answer, f.err
}

type fakeSink struct {
	mu      sync.Mutex
	records []entity.AuditRecord
	err     error
}

func (f *fakeSink) Append(_ context.Context, rec entity.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeSink) List(_ context.Context, filter entity.AuditFilter) ([]entity.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.AuditRecord
	for _, r := range f.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeIPResolver struct {
	ip    string
	err   error
	calls int
}

func (f *fakeIPResolver) PublicIP(context.Context) (string, error) {
	f.calls++
	return f.ip, f.err
}

type fakeGeolocator struct {
	coords entity.Coordinates
	err    error
	seen   []string
}

func (f *fakeGeolocator) Locate(_ context.Context, ip string) (entity.Coordinates, error) {
	f.seen = append(f.seen, ip)
	return f.coords, f.err
}

type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	texts   []string
}

func (f *fakeEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0}, nil
}

// fakeVectorStore keys search results by the first vector component.
type fakeVectorStore struct {
	results    map[float32][]entity.Passage
	err        error
	thresholds []float32
	saved      []entity.Document
	vectors    [][]float32
	saveErr    error
}

func (f *fakeVectorStore) Search(_ context.Context, vector []float32, _ uint64, threshold float32) ([]entity.Passage, error) {
	f.thresholds = append(f.thresholds, threshold)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[vector[0]], nil
}

func (f *fakeVectorStore) Save(_ context.Context, docs []entity.Document, vectors [][]float32) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, docs...)
	f.vectors = append(f.vectors, vectors...)
	return nil
}

func (f *fakeVectorStore) Status(context.Context) (entity.IndexStatus, error) {
	if len(f.saved) == 0 {
		return entity.IndexEmpty, nil
	}
	return entity.IndexReady, nil
}
