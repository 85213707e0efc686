package store

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"finrag/config"
	"finrag/internal/adapter/storetest"
	"finrag/internal/domain"
	"finrag/internal/logger"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "finrag.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return openTestStore(t)
	})
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finrag.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveIndex(domain.IndexArtifact{
		Version: "v1", Dimension: 2, Vectors: [][]float32{{0.6, 0.8}}, ChunkMap: []string{"a.pdf"},
	}))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	art, err := s.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, art.ChunkMap)
	assert.Equal(t, [][]float32{{0.6, 0.8}}, art.Vectors)
}

func TestBoltStore_CorruptIndex(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SaveIndex(domain.IndexArtifact{
		Version: "v1", Dimension: 2, Vectors: [][]float32{{1, 0}, {0, 1}}, ChunkMap: []string{"a", "b"},
	}))

	// Truncate the vector blob behind the store's back.
	require.NoError(t, s.DB().Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketIndex).Put(keyVectors, []byte{1, 2, 3})
	}))

	_, err := s.LoadIndex()
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestMigrate_ConfigChangeDropsIndex(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)

	require.NoError(t, s.Migrate(cfg))
	require.NoError(t, s.SaveIndex(domain.IndexArtifact{
		Version: "v1", Dimension: 1, Vectors: [][]float32{{1}}, ChunkMap: []string{"a"},
	}))

	rebuild, _, err := s.NeedsRebuild(cfg)
	require.NoError(t, err)
	assert.False(t, rebuild)

	changed := config.DefaultConfig()
	changed.Chunk.MaxChars = 1000
	rebuild, reason, err := s.NeedsRebuild(changed)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Equal(t, "index configuration changed", reason)

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	require.NoError(t, s.Migrate(changed))
	assert.Contains(t, logs.String(), "dropping persisted index: index configuration changed")
	_, err = s.LoadIndex()
	assert.ErrorIs(t, err, domain.ErrIndexMissing)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
	assert.Equal(t, changed.IndexFingerprint(), info.ConfigHash)
}
