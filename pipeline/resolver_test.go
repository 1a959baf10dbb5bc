package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/ai/mock"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/discovery"
	"github.com/poiesic/evidentia/evidence"
	"github.com/poiesic/evidentia/search"
	"github.com/poiesic/evidentia/storage"
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

// brokenCache fails every read and write. Used to prove the resolver
// contains cache failures instead of surfacing them.
type brokenCache struct{}

func (brokenCache) GetEntry(ctx context.Context, key core.ID) (*core.CacheEntry, error) {
	return nil, errors.New("cache backend down")
}

func (brokenCache) PutEntry(ctx context.Context, entry *core.CacheEntry) error {
	return errors.New("cache backend down")
}

func (brokenCache) DeleteEntry(ctx context.Context, key core.ID) error {
	return errors.New("cache backend down")
}

func newTestResolver(t *testing.T, stores *badger.Stores, provider ai.AIProvider, opts ...ResolverOption) *Resolver {
	t.Helper()
	engine, err := search.NewEngine(stores.Supplements, provider)
	require.NoError(t, err)
	resolver, err := NewResolver(stores.Supplements, stores.Cache, stores.Queue, engine, provider, opts...)
	require.NoError(t, err)
	return resolver
}

func TestNewResolver(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	provider := mock.NewMockProvider()
	engine, err := search.NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	t.Run("valid configuration", func(t *testing.T) {
		resolver, err := NewResolver(stores.Supplements, stores.Cache, stores.Queue, engine, provider)
		require.NoError(t, err)
		assert.NotNil(t, resolver)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewResolver(nil, stores.Cache, stores.Queue, engine, provider)
		assert.Equal(t, discovery.ErrSupplementRepositoryRequired, err)
	})

	t.Run("nil engine", func(t *testing.T) {
		_, err := NewResolver(stores.Supplements, stores.Cache, stores.Queue, nil, provider)
		assert.Equal(t, ErrEngineRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewResolver(stores.Supplements, stores.Cache, stores.Queue, engine, nil)
		assert.Equal(t, search.ErrAIProviderRequired, err)
	})
}

func TestResolveInvalidQuery(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	resolver := newTestResolver(t, stores, mock.NewMockProvider())

	_, err = resolver.Resolve(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}

func TestResolveCacheHitSkipsSearch(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())
	resolver := newTestResolver(t, stores, provider)

	err = stores.Cache.PutEntry(context.Background(), &core.CacheEntry{
		Key:        core.QueryHash("creatine"),
		Supplement: core.SupplementRecord{Id: 7, Name: "Creatine"},
	})
	require.NoError(t, err)

	result, err := resolver.Resolve(context.Background(), Request{Query: "creatine"})
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, SourceCache, result.Source)
	require.NotNil(t, result.Best())
	assert.Equal(t, "Creatine", result.Best().Record.Name)

	// The embedding model was never consulted
	assert.Equal(t, 0, embedder.CallCount())
}

func TestResolveSearchHitIsCached(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	added, err := stores.Supplements.AddSupplements(context.Background(), &core.SupplementRecord{
		Name:   "Creatine",
		Vector: []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())
	resolver := newTestResolver(t, stores, provider)

	result, err := resolver.Resolve(context.Background(), Request{Query: "creatine"})
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, SourceSearch, result.Source)
	require.NotNil(t, result.Best())
	assert.Equal(t, "Creatine", result.Best().Record.Name)

	// The hit bumped the supplement's search stats
	record, err := stores.Supplements.GetSupplement(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), record.SearchCount)

	// The same query now answers from the cache
	again, err := resolver.Resolve(context.Background(), Request{Query: "creatine"})
	require.NoError(t, err)
	assert.Equal(t, SourceCache, again.Source)
}

func TestResolveSyncDiscoveryOnMiss(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	provider := mock.NewMockProvider()

	oracle := evidence.NewMockOracle()
	oracle.StudyCountFunc = func(ctx context.Context, term string) (*core.EvidenceCount, error) {
		return &core.EvidenceCount{Count: 200, OracleQuery: evidence.BuildQuery(term)}, nil
	}
	controller, err := discovery.NewController(stores.Supplements, oracle, provider)
	require.NoError(t, err)

	resolver := newTestResolver(t, stores, provider, WithSyncDiscovery(controller))

	result, err := resolver.Resolve(context.Background(), Request{Query: "Shilajit"})
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, SourceDiscovery, result.Source)
	require.NotNil(t, result.Best())
	assert.Equal(t, "shilajit", result.Best().Record.Name)
	assert.False(t, result.Enqueued)

	// The newly discovered record is persisted
	found, err := stores.Supplements.FindByName(context.Background(), "shilajit")
	require.NoError(t, err)
	assert.Equal(t, result.Best().Record.Id, found.Id)
}

func TestResolveThinEvidenceFallsBackToQueue(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	provider := mock.NewMockProvider()

	oracle := evidence.NewMockOracle()
	oracle.StudyCountFunc = func(ctx context.Context, term string) (*core.EvidenceCount, error) {
		return &core.EvidenceCount{Count: 1}, nil
	}
	controller, err := discovery.NewController(stores.Supplements, oracle, provider)
	require.NoError(t, err)

	resolver := newTestResolver(t, stores, provider, WithSyncDiscovery(controller))

	result, err := resolver.Resolve(context.Background(), Request{Query: "Obscure Compound"})
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.True(t, result.Enqueued)
	assert.Empty(t, result.Matches)
	assert.Equal(t, ReasonInsufficientEvidence, result.Reason)
	assert.Equal(t, 1, result.StudyCount)

	// Mock rewriter normalizes by lowercasing
	item, err := stores.Queue.GetItem(context.Background(), core.QueryHash("obscure compound"))
	require.NoError(t, err)
	assert.Equal(t, "Obscure Compound", item.Query)
	assert.Equal(t, "obscure compound", item.Normalized)
	assert.Equal(t, core.StatusPending, item.Status)
}

func TestResolveMissEnqueuesWithoutController(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	resolver := newTestResolver(t, stores, mock.NewMockProvider())

	result, err := resolver.Resolve(context.Background(), Request{Query: "unknown herb"})
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.True(t, result.Enqueued)
	assert.Equal(t, ReasonNoMatch, result.Reason)

	_, err = stores.Queue.GetItem(context.Background(), core.QueryHash("unknown herb"))
	require.NoError(t, err)
}

func TestResolveBrokenCacheAnswersFromSearch(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	_, err = stores.Supplements.AddSupplements(context.Background(), &core.SupplementRecord{
		Name:   "Creatine",
		Vector: []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())

	engine, err := search.NewEngine(stores.Supplements, provider)
	require.NoError(t, err)

	var cache storage.CacheRepository = brokenCache{}
	resolver, err := NewResolver(stores.Supplements, cache, stores.Queue, engine, provider)
	require.NoError(t, err)

	result, err := resolver.Resolve(context.Background(), Request{Query: "creatine"})
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, SourceSearch, result.Source)
}

func TestResolveLimitWidensMatches(t *testing.T) {
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer stores.Close()

	_, err = stores.Supplements.AddSupplements(context.Background(),
		&core.SupplementRecord{Name: "Creatine Monohydrate", Vector: []float32{1, 0, 0, 0}},
		&core.SupplementRecord{Name: "Creatine HCL", Vector: []float32{0.99, 0.1411, 0, 0}},
	)
	require.NoError(t, err)

	embedder := fixedEmbedder(map[string][]float32{
		"creatine": {1, 0, 0, 0},
	})
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryRewriter())
	resolver := newTestResolver(t, stores, provider)

	result, err := resolver.Resolve(context.Background(), Request{Query: "creatine", Limit: 5})
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "Creatine Monohydrate", result.Matches[0].Record.Name)
	assert.Equal(t, "Creatine HCL", result.Matches[1].Record.Name)
}
