package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"finrag/internal/domain"
)

var (
	bucketDocs       = []byte("docs")
	bucketRaw        = []byte("raw")
	bucketRecords    = []byte("records")
	bucketNarrations = []byte("narrations")
	bucketIndex      = []byte("index")
	bucketStats      = []byte("stats")
)

// documentBuckets hold per-filename data and are cleared by Delete and Clear.
var documentBuckets = [][]byte{bucketDocs, bucketRaw, bucketRecords, bucketNarrations}

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := append(append([][]byte{}, documentBuckets...), bucketIndex, bucketStats)
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

type docMeta struct {
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	IngestedAt  int64  `json:"ingested_at"`
}

// Put stores a raw document, replacing any previous document of the same name
// along with its derived data.
func (s *BoltStore) Put(doc domain.RawDocument) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(doc.Filename)
		meta := docMeta{
			ContentType: doc.ContentType,
			Size:        len(doc.Content),
			IngestedAt:  doc.IngestedAt.UnixNano(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketDocs).Put(key, data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketRaw).Put(key, doc.Content); err != nil {
			return err
		}
		if err := tx.Bucket(bucketRecords).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketNarrations).Delete(key)
	})
}

func (s *BoltStore) Get(filename string) (domain.RawDocument, error) {
	var doc domain.RawDocument
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := []byte(filename)
		data := tx.Bucket(bucketDocs).Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		raw := tx.Bucket(bucketRaw).Get(key)
		doc = domain.RawDocument{
			Filename:    filename,
			ContentType: meta.ContentType,
			Content:     append([]byte(nil), raw...),
			IngestedAt:  time.Unix(0, meta.IngestedAt),
		}
		return nil
	})
	return doc, err
}

func (s *BoltStore) PutDerived(filename string, records []domain.TransactionRecord, narration string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(filename)
		if tx.Bucket(bucketDocs).Get(key) == nil {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
		}
		data, err := json.Marshal(records)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRecords).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(bucketNarrations).Put(key, []byte(narration))
	})
}

func (s *BoltStore) Records(filename string) ([]domain.TransactionRecord, error) {
	var records []domain.TransactionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(filename))
		if data == nil {
			return fmt.Errorf("%w: records for %s", domain.ErrNotFound, filename)
		}
		return json.Unmarshal(data, &records)
	})
	return records, err
}

func (s *BoltStore) Narration(filename string) (string, error) {
	var text string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketNarrations).Get([]byte(filename))
		if data == nil {
			return fmt.Errorf("%w: narration for %s", domain.ErrNotFound, filename)
		}
		text = string(data)
		return nil
	})
	return text, err
}

// ListFilenames returns names in bolt key order, which is byte order.
func (s *BoltStore) ListFilenames() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func (s *BoltStore) ListNarrations() ([]domain.Narration, error) {
	var out []domain.Narration
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNarrations).ForEach(func(k, v []byte) error {
			out = append(out, domain.Narration{Filename: string(k), Text: string(v)})
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) Delete(filename string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(filename)
		if tx.Bucket(bucketDocs).Get(key) == nil {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, filename)
		}
		for _, name := range documentBuckets {
			if err := tx.Bucket(name).Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
