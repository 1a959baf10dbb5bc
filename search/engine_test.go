package search

import (
	"context"
	"testing"

	"github.com/poiesic/evidentia/ai/mock"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedEmbedder returns canned vectors per text, and a zero vector for
// anything unknown.
func fixedEmbedder(vectors map[string][]float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 0, 0}, nil
	}
	return embedder
}

func seedSupplement(t *testing.T, stores *badger.Stores, name string, vector []float32) *core.SupplementRecord {
	t.Helper()
	added, err := stores.Supplements.AddSupplements(context.Background(), &core.SupplementRecord{
		Name:   name,
		Vector: vector,
	})
	require.NoError(t, err)
	return added[0]
}

func TestNewEngine(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		engine, err := NewEngine(stores.Supplements, provider)
		require.NoError(t, err)
		assert.NotNil(t, engine)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewEngine(nil, provider)
		assert.Equal(t, ErrSupplementRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewEngine(stores.Supplements, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestResolveDirectHit(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "Creatine", []float32{1, 0, 0, 0})

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	resolution, err := engine.Resolve(context.Background(), "creatine")
	require.NoError(t, err)
	require.True(t, resolution.Found())
	assert.Equal(t, "Creatine", resolution.Match.Record.Name)
	assert.InDelta(t, 1.0, float64(resolution.Match.Similarity), 0.001)
	assert.Equal(t, "creatine", resolution.Term)
}

func TestResolveMiss(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "Creatine", []float32{1, 0, 0, 0})

	// Query vector is nearly orthogonal to everything indexed
	embedder := fixedEmbedder(map[string][]float32{
		"obscure herb": {0, 1, 0, 0},
	})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	resolution, err := engine.Resolve(context.Background(), "obscure herb")
	require.NoError(t, err)
	assert.False(t, resolution.Found())
	assert.InDelta(t, 0.0, float64(resolution.BestSimilarity), 0.001)
}

func TestResolveBestAcrossTerms(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "N-Acetyl Cysteine", []float32{1, 0, 0, 0})

	// First term lands close but not perfect, second term is a direct hit
	embedder := fixedEmbedder(map[string][]float32{
		"nac":               {0.9, 0.4359, 0, 0},
		"N-Acetyl Cysteine": {1, 0, 0, 0},
	})
	rewriter := mock.NewMockQueryRewriter()
	rewriter.ExpandFunc = func(ctx context.Context, query string) ([]string, error) {
		return []string{"nac", "N-Acetyl Cysteine"}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, rewriter)

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	resolution, err := engine.Resolve(context.Background(), "nac")
	require.NoError(t, err)
	require.True(t, resolution.Found())
	assert.Equal(t, "N-Acetyl Cysteine", resolution.Term)
	assert.InDelta(t, 1.0, float64(resolution.Match.Similarity), 0.001)
}

func TestResolveEarlyStop(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "Creatine", []float32{1, 0, 0, 0})

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	rewriter := mock.NewMockQueryRewriter()
	rewriter.ExpandFunc = func(ctx context.Context, query string) ([]string, error) {
		return []string{"creatine", "creatine monohydrate", "kreatin"}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, rewriter)

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	resolution, err := engine.Resolve(context.Background(), "creatina")
	require.NoError(t, err)
	require.True(t, resolution.Found())

	// First term was a perfect hit, so remaining terms were never embedded:
	// one Expand call plus one EmbedText call
	assert.Equal(t, 1, embedder.CallCount())
}

func TestResolveExpansionFailureDegrades(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "Creatine", []float32{1, 0, 0, 0})

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	rewriter := mock.NewMockQueryRewriter()
	rewriter.ExpandFunc = func(ctx context.Context, query string) ([]string, error) {
		return nil, assert.AnError
	}
	provider := mock.NewMockProviderWithServices(embedder, rewriter)

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	resolution, err := engine.Resolve(context.Background(), "creatine")
	require.NoError(t, err)
	assert.True(t, resolution.Found())
	assert.Equal(t, []string{"creatine"}, resolution.Terms)
}

func TestSearchFiltersAtThreshold(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "Creatine", []float32{1, 0, 0, 0})
	seedSupplement(t, stores, "Unrelated", []float32{0, 1, 0, 0})

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	matches, err := engine.Search(context.Background(), "creatine", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Creatine", matches[0].Record.Name)
}

// recordingMonitor captures every resolution callback for inspection.
type recordingMonitor struct {
	started   string
	terms     []string
	searched  []string
	earlyStop bool
	finished  *Resolution
}

func (m *recordingMonitor) Start(query string)            { m.started = query }
func (m *recordingMonitor) AfterExpansion(terms []string) { m.terms = terms }
func (m *recordingMonitor) TermSearched(term string, best *core.SupplementMatch) {
	m.searched = append(m.searched, term)
}
func (m *recordingMonitor) EarlyStop(term string, similarity float32) { m.earlyStop = true }
func (m *recordingMonitor) Finish(resolution *Resolution)             { m.finished = resolution }

func TestResolveWithMonitor(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	seedSupplement(t, stores, "Creatine", []float32{1, 0, 0, 0})

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	rewriter := mock.NewMockQueryRewriter()
	rewriter.ExpandFunc = func(ctx context.Context, query string) ([]string, error) {
		return []string{"creatine", "kreatin"}, nil
	}
	provider := mock.NewMockProviderWithServices(embedder, rewriter)

	engine, err := NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	resolution, err := engine.ResolveWithMonitor(context.Background(), "creatina", monitor)
	require.NoError(t, err)
	require.True(t, resolution.Found())

	assert.Equal(t, "creatina", monitor.started)
	assert.Equal(t, []string{"creatine", "kreatin"}, monitor.terms)
	assert.Equal(t, []string{"creatine"}, monitor.searched)
	assert.True(t, monitor.earlyStop)
	require.NotNil(t, monitor.finished)
	assert.Same(t, resolution, monitor.finished)
}
