// Package vectorindex holds the exact inner-product index over unit-length
// chunk vectors.
package vectorindex

import (
	"fmt"
	"sort"
	"time"

	"finrag/internal/domain"
)

// Flat is an immutable snapshot of the index: vectors[i] was computed from a
// chunk of the document named chunkMap[i]. Searches over a published Flat
// need no locking.
type Flat struct {
	version  string
	model    string
	dim      int
	builtAt  time.Time
	vectors  [][]float32
	chunkMap []string
}

// New validates and wraps an index artifact.
func New(a domain.IndexArtifact) (*Flat, error) {
	if len(a.Vectors) != len(a.ChunkMap) {
		return nil, fmt.Errorf("vectorindex: %d vectors but %d chunk map entries", len(a.Vectors), len(a.ChunkMap))
	}
	for i, v := range a.Vectors {
		if len(v) != a.Dimension {
			return nil, fmt.Errorf("vectorindex: vector %d has dimension %d, want %d", i, len(v), a.Dimension)
		}
	}
	return &Flat{
		version:  a.Version,
		model:    a.Model,
		dim:      a.Dimension,
		builtAt:  a.BuiltAt,
		vectors:  a.Vectors,
		chunkMap: a.ChunkMap,
	}, nil
}

func (f *Flat) Version() string    { return f.version }
func (f *Flat) Dimension() int     { return f.dim }
func (f *Flat) Len() int           { return len(f.vectors) }
func (f *Flat) BuiltAt() time.Time { return f.builtAt }

// Empty reports whether the index has nothing to search.
func (f *Flat) Empty() bool {
	return f == nil || len(f.chunkMap) == 0
}

// Artifact returns the persistable form of the snapshot.
func (f *Flat) Artifact() domain.IndexArtifact {
	return domain.IndexArtifact{
		Version:   f.version,
		Model:     f.model,
		Dimension: f.dim,
		Vectors:   f.vectors,
		ChunkMap:  f.chunkMap,
		BuiltAt:   f.builtAt,
	}
}

// Search scores query against every stored vector by inner product and
// returns the k best hits. Equal scores rank the lower position first.
func (f *Flat) Search(query []float32, k int) ([]domain.Hit, error) {
	if f.Empty() {
		return nil, nil
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("vectorindex: query dimension %d, index dimension %d", len(query), f.dim)
	}
	if k <= 0 {
		k = 1
	}

	hits := make([]domain.Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = domain.Hit{
			Position: i,
			Filename: f.chunkMap[i],
			Score:    Dot(query, v),
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}
