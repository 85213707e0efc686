// Package storetest holds behaviour tests shared by every document store.
package storetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrag/internal/domain"
	"finrag/internal/port"
)

// Store is a document store that also persists the index artifact.
type Store interface {
	port.DocumentStore
	port.IndexArtifactStore
}

func rawDoc(name string) domain.RawDocument {
	return domain.RawDocument{
		Filename:    name,
		ContentType: "text/csv",
		Content:     []byte("Date,Balance\n17/05/18,900\n"),
		IngestedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func records() []domain.TransactionRecord {
	return []domain.TransactionRecord{{
		Date:    domain.Set("17-May-2018"),
		Debit:   domain.Set("0"),
		Credit:  domain.Set("0"),
		Balance: domain.Set("900"),
		Extra:   []domain.Column{{Name: "ref", Value: "X1"}},
	}}
}

// Run exercises s, which must start empty.
func Run(t *testing.T, open func(t *testing.T) Store) {
	t.Run("PutGet", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(rawDoc("a.csv")))

		got, err := s.Get("a.csv")
		require.NoError(t, err)
		assert.Equal(t, "a.csv", got.Filename)
		assert.Equal(t, "text/csv", got.ContentType)
		assert.Equal(t, rawDoc("a.csv").Content, got.Content)
		assert.True(t, got.IngestedAt.Equal(rawDoc("a.csv").IngestedAt))

		_, err = s.Get("missing.csv")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Derived", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(rawDoc("a.csv")))

		_, err := s.Narration("a.csv")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		require.NoError(t, s.PutDerived("a.csv", records(), "On 17-May-2018, ..."))

		recs, err := s.Records("a.csv")
		require.NoError(t, err)
		assert.Equal(t, records(), recs)

		text, err := s.Narration("a.csv")
		require.NoError(t, err)
		assert.Equal(t, "On 17-May-2018, ...", text)

		err = s.PutDerived("missing.csv", records(), "x")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ReplaceDropsDerived", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(rawDoc("a.csv")))
		require.NoError(t, s.PutDerived("a.csv", records(), "old"))
		require.NoError(t, s.Put(rawDoc("a.csv")))

		_, err := s.Narration("a.csv")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListOrdered", func(t *testing.T) {
		s := open(t)
		for _, name := range []string{"c.pdf", "a.csv", "b.json"} {
			require.NoError(t, s.Put(rawDoc(name)))
		}
		require.NoError(t, s.PutDerived("c.pdf", records(), "third"))
		require.NoError(t, s.PutDerived("a.csv", records(), "first"))

		names, err := s.ListFilenames()
		require.NoError(t, err)
		assert.Equal(t, []string{"a.csv", "b.json", "c.pdf"}, names)

		narrations, err := s.ListNarrations()
		require.NoError(t, err)
		assert.Equal(t, []domain.Narration{
			{Filename: "a.csv", Text: "first"},
			{Filename: "c.pdf", Text: "third"},
		}, narrations)
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(rawDoc("a.csv")))
		require.NoError(t, s.PutDerived("a.csv", records(), "n"))
		require.NoError(t, s.Delete("a.csv"))

		_, err := s.Get("a.csv")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = s.Records("a.csv")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, s.Delete("a.csv"), domain.ErrNotFound)
	})

	t.Run("IndexRoundTrip", func(t *testing.T) {
		s := open(t)

		_, err := s.LoadIndex()
		assert.ErrorIs(t, err, domain.ErrIndexMissing)

		art := domain.IndexArtifact{
			Version:   "v1",
			Model:     "hash",
			Dimension: 3,
			Vectors:   [][]float32{{1, 0, 0}, {0, 0.6, 0.8}},
			ChunkMap:  []string{"a.csv", "b.json"},
			BuiltAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, s.SaveIndex(art))

		got, err := s.LoadIndex()
		require.NoError(t, err)
		assert.Equal(t, art.Version, got.Version)
		assert.Equal(t, art.Model, got.Model)
		assert.Equal(t, art.Dimension, got.Dimension)
		assert.Equal(t, art.Vectors, got.Vectors)
		assert.Equal(t, art.ChunkMap, got.ChunkMap)
		assert.True(t, art.BuiltAt.Equal(got.BuiltAt))

		require.NoError(t, s.DeleteIndex())
		_, err = s.LoadIndex()
		assert.ErrorIs(t, err, domain.ErrIndexMissing)
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.SaveIndex(domain.IndexArtifact{Version: "v0", Dimension: 8}))

		got, err := s.LoadIndex()
		require.NoError(t, err)
		assert.Empty(t, got.ChunkMap)
		assert.Empty(t, got.Vectors)
	})

	t.Run("SaveRejectsMismatch", func(t *testing.T) {
		s := open(t)
		err := s.SaveIndex(domain.IndexArtifact{Dimension: 1, Vectors: [][]float32{{1}}})
		assert.ErrorIs(t, err, domain.ErrPersistence)
	})

	t.Run("Clear", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Put(rawDoc("a.csv")))
		require.NoError(t, s.PutDerived("a.csv", records(), "n"))
		require.NoError(t, s.SaveIndex(domain.IndexArtifact{
			Dimension: 1, Vectors: [][]float32{{1}}, ChunkMap: []string{"a.csv"},
		}))

		require.NoError(t, s.Clear())

		names, err := s.ListFilenames()
		require.NoError(t, err)
		assert.Empty(t, names)
		_, err = s.LoadIndex()
		assert.ErrorIs(t, err, domain.ErrIndexMissing)
	})
}
