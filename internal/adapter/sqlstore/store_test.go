package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/config"
	"finrag/internal/adapter/storetest"
	"finrag/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "finrag.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return setupTestStore(t)
	})
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finrag.sqlite")

	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(domain.RawDocument{Filename: "a.csv", ContentType: "text/csv", Content: []byte("x")}))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	names, err := s.ListFilenames()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv"}, names)
	assert.Equal(t, path, s.Path())
}

func TestStore_DeleteCascadesDerived(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.Put(domain.RawDocument{Filename: "a.csv", ContentType: "text/csv", Content: []byte("x")}))
	require.NoError(t, s.PutDerived("a.csv", nil, "narration"))
	require.NoError(t, s.Delete("a.csv"))

	narrations, err := s.ListNarrations()
	require.NoError(t, err)
	assert.Empty(t, narrations)
}

func TestStore_CorruptIndex(t *testing.T) {
	s := setupTestStore(t)
	require.NoError(t, s.SaveIndex(domain.IndexArtifact{
		Version: "v1", Dimension: 2, Vectors: [][]float32{{1, 0}}, ChunkMap: []string{"a"},
	}))
	_, err := s.db.Exec(`UPDATE index_artifact SET vectors = ?`, []byte{0, 1})
	require.NoError(t, err)

	_, err = s.LoadIndex()
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestStore_MigrateDropsStaleIndex(t *testing.T) {
	s := setupTestStore(t)
	cfg := config.DefaultConfig()
	require.NoError(t, s.Migrate(cfg))

	require.NoError(t, s.SaveIndex(domain.IndexArtifact{
		Version: "v1", Dimension: 1, Vectors: [][]float32{{1}}, ChunkMap: []string{"a"},
	}))

	// Same settings keep the index.
	require.NoError(t, s.Migrate(cfg))
	_, err := s.LoadIndex()
	require.NoError(t, err)

	changed := config.DefaultConfig()
	changed.Chunk.OverlapChars = 0
	require.NoError(t, s.Migrate(changed))
	_, err = s.LoadIndex()
	assert.ErrorIs(t, err, domain.ErrIndexMissing)
}
