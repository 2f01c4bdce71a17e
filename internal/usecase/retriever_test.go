package usecase

import (
	"context"
	"errors"
	"testing"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRAGRetriever_PrimaryHit(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"rice export": {1}}}
	vs := &fakeVectorStore{results: map[float32][]entity.Passage{
		1: {
			{Content: "Rice exports need an AVS permit.", Source: "avs.txt", Score: 0.9},
			{Content: "Declare via TradeNet.", Score: 0.7},
		},
	}}
	llm := newScriptedCompleter()
	r := NewRAGRetriever(emb, vs, llm, RetrievalOptions{ScoreThreshold: 0.55, Broaden: true}, logging.Discard())

	got, err := r.Retrieve(context.Background(), "rice export")

	require.NoError(t, err)
	assert.Equal(t, "[avs.txt]\nRice exports need an AVS permit.\n\n---\n\nDeclare via TradeNet.", got)
	assert.Equal(t, []float32{0.55}, vs.thresholds)
	assert.Zero(t, llm.callCount(broadenKey))
}

func TestRAGRetriever_BroadensWhenEmpty(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"rice":               {1},
		"rice export permit": {2},
		"grain licensing":    {3},
	}}
	shared := entity.Passage{Content: "Rice is a controlled item.", Source: "sfa.txt"}
	vs := &fakeVectorStore{results: map[float32][]entity.Passage{
		2: {shared},
		3: {shared, {Content: "Grain needs a licence.", Source: "sfa.txt"}},
	}}
	llm := newScriptedCompleter().on(broadenKey, "1. rice export permit\n- grain licensing\n\n")
	r := NewRAGRetriever(emb, vs, llm, RetrievalOptions{Broaden: true}, logging.Discard())

	got, err := r.Retrieve(context.Background(), "rice")

	require.NoError(t, err)
	assert.Equal(t, "[sfa.txt]\nRice is a controlled item.\n\n---\n\n[sfa.txt]\nGrain needs a licence.", got)
	assert.Equal(t, []string{"rice", "rice export permit", "grain licensing"}, emb.texts)
}

func TestRAGRetriever_UnknownContext(t *testing.T) {
	t.Run("broadening disabled", func(t *testing.T) {
		llm := newScriptedCompleter()
		r := NewRAGRetriever(&fakeEmbedder{}, &fakeVectorStore{}, llm, RetrievalOptions{}, logging.Discard())

		got, err := r.Retrieve(context.Background(), "rice")

		require.NoError(t, err)
		assert.Equal(t, entity.UnknownContext, got)
		assert.Zero(t, llm.callCount(broadenKey))
	})

	t.Run("broadening fails", func(t *testing.T) {
		llm := newScriptedCompleter().fail(broadenKey, entity.ErrTransientService)
		r := NewRAGRetriever(&fakeEmbedder{}, &fakeVectorStore{}, llm, RetrievalOptions{Broaden: true}, logging.Discard())

		got, err := r.Retrieve(context.Background(), "rice")

		require.NoError(t, err)
		assert.Equal(t, entity.UnknownContext, got)
	})
}

func TestRAGRetriever_FailuresAreTransient(t *testing.T) {
	boom := errors.New("connection refused")

	r := NewRAGRetriever(&fakeEmbedder{err: boom}, &fakeVectorStore{}, nil, RetrievalOptions{}, logging.Discard())
	_, err := r.Retrieve(context.Background(), "rice")
	require.ErrorIs(t, err, entity.ErrTransientService)
	require.ErrorIs(t, err, boom)

	r = NewRAGRetriever(&fakeEmbedder{}, &fakeVectorStore{err: boom}, nil, RetrievalOptions{}, logging.Discard())
	_, err = r.Retrieve(context.Background(), "rice")
	require.ErrorIs(t, err, entity.ErrTransientService)
}

func TestSplitPhrasings(t *testing.T) {
	got := splitPhrasings("1) first\n\n* second\n3. third\nfourth", 3)
	assert.Equal(t, []string{"first", "second", "third"}, got)
}
