package evidentia

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	t.Run("create new catalog", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_catalog")
		catalog, err := NewCatalog(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, catalog)
		defer catalog.Close()

		// Verify components are initialized
		assert.NotNil(t, catalog.SupplementRepository())
		assert.NotNil(t, catalog.CacheRepository())
		assert.NotNil(t, catalog.QueueRepository())
		assert.NotNil(t, catalog.Resolver())
		assert.NotNil(t, catalog.SearchEngine())
		assert.NotNil(t, catalog.DiscoveryController())
		assert.NotNil(t, catalog.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open a catalog at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		catalog, err := NewCatalog(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, catalog)
	})
}

func TestCatalog_Close(t *testing.T) {
	catalog, err := NewCatalog(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, catalog)

	err = catalog.Close()
	assert.NoError(t, err)
}

func TestCatalog_FactoryMethods(t *testing.T) {
	catalog, err := NewCatalog(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, catalog)
	defer catalog.Close()

	t.Run("can create worker", func(t *testing.T) {
		worker, err := catalog.NewWorker()
		require.NoError(t, err)
		require.NotNil(t, worker)
		worker.Release()
	})

	t.Run("can create server", func(t *testing.T) {
		srv, err := catalog.NewServer()
		require.NoError(t, err)
		require.NotNil(t, srv)
	})

	t.Run("can create reindexer", func(t *testing.T) {
		reindexer := catalog.NewReindexer(nil, io.Discard)
		require.NotNil(t, reindexer)
	})
}
