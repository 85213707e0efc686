package memstore

import (
	"fmt"
	"sort"
	"sync"

	"finrag/internal/domain"
)

type derived struct {
	records   []domain.TransactionRecord
	narration string
}

// MemoryStore keeps documents and the index artifact in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]domain.RawDocument
	derived map[string]derived
	index   *domain.IndexArtifact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[string]domain.RawDocument),
		derived: make(map[string]derived),
	}
}

func (s *MemoryStore) Put(doc domain.RawDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.Content = append([]byte(nil), doc.Content...)
	s.docs[doc.Filename] = doc
	delete(s.derived, doc.Filename)
	return nil
}

func (s *MemoryStore) Get(filename string) (domain.RawDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[filename]
	if !ok {
		return domain.RawDocument{}, fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	return doc, nil
}

func (s *MemoryStore) PutDerived(filename string, records []domain.TransactionRecord, narration string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[filename]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	s.derived[filename] = derived{
		records:   append([]domain.TransactionRecord(nil), records...),
		narration: narration,
	}
	return nil
}

func (s *MemoryStore) Records(filename string) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.derived[filename]
	if !ok {
		return nil, fmt.Errorf("%w: records for %s", domain.ErrNotFound, filename)
	}
	return append([]domain.TransactionRecord(nil), d.records...), nil
}

func (s *MemoryStore) Narration(filename string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.derived[filename]
	if !ok {
		return "", fmt.Errorf("%w: narration for %s", domain.ErrNotFound, filename)
	}
	return d.narration, nil
}

func (s *MemoryStore) ListFilenames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) ListNarrations() ([]domain.Narration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Narration, 0, len(s.derived))
	for name, d := range s.derived {
		out = append(out, domain.Narration{Filename: name, Text: d.narration})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (s *MemoryStore) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[filename]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
	}
	delete(s.docs, filename)
	delete(s.derived, filename)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]domain.RawDocument)
	s.derived = make(map[string]derived)
	s.index = nil
	return nil
}

func (s *MemoryStore) SaveIndex(art domain.IndexArtifact) error {
	if len(art.Vectors) != len(art.ChunkMap) {
		return fmt.Errorf("%w: %d vectors but %d chunk map entries", domain.ErrPersistence, len(art.Vectors), len(art.ChunkMap))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = &art
	return nil
}

func (s *MemoryStore) LoadIndex() (domain.IndexArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return domain.IndexArtifact{}, domain.ErrIndexMissing
	}
	return *s.index, nil
}

func (s *MemoryStore) DeleteIndex() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
