package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"finrag/internal/adapter/vectorindex"
	"finrag/internal/domain"
)

var (
	keyVectors  = []byte("vectors")
	keyChunkMap = []byte("chunk_map")
	keyMeta     = []byte("meta")
)

type indexMeta struct {
	Version   string `json:"version"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
	Count     int    `json:"count"`
	BuiltAt   int64  `json:"built_at"`
}

// SaveIndex writes vectors, chunk map and meta in one transaction so a reader
// never sees one without the others.
func (s *BoltStore) SaveIndex(art domain.IndexArtifact) error {
	if len(art.Vectors) != len(art.ChunkMap) {
		return fmt.Errorf("%w: %d vectors but %d chunk map entries", domain.ErrPersistence, len(art.Vectors), len(art.ChunkMap))
	}

	meta, err := json.Marshal(indexMeta{
		Version:   art.Version,
		Model:     art.Model,
		Dimension: art.Dimension,
		Count:     len(art.Vectors),
		BuiltAt:   art.BuiltAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	chunkMap, err := json.Marshal(art.ChunkMap)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	vectors := vectorindex.EncodeVectors(art.Vectors, art.Dimension)

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndex)
		if err := b.Put(keyVectors, vectors); err != nil {
			return err
		}
		if err := b.Put(keyChunkMap, chunkMap); err != nil {
			return err
		}
		return b.Put(keyMeta, meta)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// LoadIndex returns domain.ErrIndexMissing when no index is stored and
// domain.ErrPersistence when the stored parts do not agree.
func (s *BoltStore) LoadIndex() (domain.IndexArtifact, error) {
	var art domain.IndexArtifact
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndex)
		metaData := b.Get(keyMeta)
		if metaData == nil {
			return domain.ErrIndexMissing
		}

		var meta indexMeta
		if err := json.Unmarshal(metaData, &meta); err != nil {
			return fmt.Errorf("%w: meta: %w", domain.ErrPersistence, err)
		}

		var chunkMap []string
		if err := json.Unmarshal(b.Get(keyChunkMap), &chunkMap); err != nil {
			return fmt.Errorf("%w: chunk map: %w", domain.ErrPersistence, err)
		}
		if len(chunkMap) != meta.Count {
			return fmt.Errorf("%w: chunk map has %d entries, meta says %d", domain.ErrPersistence, len(chunkMap), meta.Count)
		}

		vectors, err := vectorindex.DecodeVectors(b.Get(keyVectors), meta.Count, meta.Dimension)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}

		art = domain.IndexArtifact{
			Version:   meta.Version,
			Model:     meta.Model,
			Dimension: meta.Dimension,
			Vectors:   vectors,
			ChunkMap:  chunkMap,
			BuiltAt:   time.Unix(0, meta.BuiltAt),
		}
		return nil
	})
	return art, err
}

func (s *BoltStore) DeleteIndex() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketIndex)
		for _, k := range [][]byte{keyVectors, keyChunkMap, keyMeta} {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
