// Package bolt provides a document store backed by a bbolt key/value file.
//
// Layout:
//
//	documents/<id>        JSON document without raw bytes
//	raw/<id>              original bytes
//	chunks/<id>/<seq>     JSON chunk, keyed by big-endian sequence
//	chunk_ids/<chunk id>  owning document ID
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

// DatabaseFile is the file name of the database inside the data directory.
const DatabaseFile = "documents.bolt"

var (
	bucketDocs     = []byte("documents")
	bucketRaw      = []byte("raw")
	bucketChunks   = []byte("chunks")
	bucketChunkIDs = []byte("chunk_ids")
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a bbolt-backed driven.DocumentStore.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (creating if needed) the database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, DatabaseFile), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDocs, bucketRaw, bucketChunks, bucketChunkIDs} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

func seqKey(seq int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(seq))
	return key
}

// ReplaceDocument writes the document and its chunk set in one transaction.
func (s *Store) ReplaceDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	meta := *doc
	meta.Raw = nil
	docJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		id := []byte(doc.ID)
		if err := tx.Bucket(bucketDocs).Put(id, docJSON); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
		if err := tx.Bucket(bucketRaw).Put(id, doc.Raw); err != nil {
			return fmt.Errorf("saving raw bytes: %w", err)
		}

		if err := deleteChunks(tx, id); err != nil {
			return err
		}

		b, err := tx.Bucket(bucketChunks).CreateBucket(id)
		if err != nil {
			return fmt.Errorf("creating chunk bucket: %w", err)
		}
		ids := tx.Bucket(bucketChunkIDs)
		for _, c := range chunks {
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshalling chunk: %w", err)
			}
			if err := b.Put(seqKey(c.Sequence), data); err != nil {
				return fmt.Errorf("saving chunk %s: %w", c.ID, err)
			}
			if err := ids.Put([]byte(c.ID), id); err != nil {
				return fmt.Errorf("indexing chunk %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// deleteChunks drops a document's chunk bucket and chunk ID entries.
func deleteChunks(tx *bbolt.Tx, id []byte) error {
	parent := tx.Bucket(bucketChunks)
	b := parent.Bucket(id)
	if b == nil {
		return nil
	}

	ids := tx.Bucket(bucketChunkIDs)
	err := b.ForEach(func(_, v []byte) error {
		var c domain.Chunk
		if err := json.Unmarshal(v, &c); err != nil {
			return fmt.Errorf("decoding chunk: %w", err)
		}
		return ids.Delete([]byte(c.ID))
	})
	if err != nil {
		return err
	}
	return parent.DeleteBucket(id)
}

// GetDocument retrieves a document by ID, including raw bytes.
func (s *Store) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return domain.ErrNotFound
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("decoding document: %w", err)
		}
		if raw := tx.Bucket(bucketRaw).Get([]byte(id)); raw != nil {
			// Values are only valid inside the transaction.
			doc.Raw = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetChunks retrieves all chunks for a document ordered by sequence.
func (s *Store) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketChunks).Bucket([]byte(documentID))
		if b == nil {
			return nil
		}
		// Big-endian keys iterate in sequence order.
		return b.ForEach(func(_, v []byte) error {
			var c domain.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("decoding chunk: %w", err)
			}
			chunks = append(chunks, c)
			return nil
		})
	})
	return chunks, err
}

// GetChunk retrieves a specific chunk by ID.
func (s *Store) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	var found *domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		docID := tx.Bucket(bucketChunkIDs).Get([]byte(id))
		if docID == nil {
			return domain.ErrNotFound
		}
		b := tx.Bucket(bucketChunks).Bucket(docID)
		if b == nil {
			return domain.ErrNotFound
		}
		return b.ForEach(func(_, v []byte) error {
			if found != nil {
				return nil
			}
			var c domain.Chunk
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("decoding chunk: %w", err)
			}
			if c.ID == id {
				found = &c
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		key := []byte(id)
		if err := deleteChunks(tx, key); err != nil {
			return err
		}
		if err := tx.Bucket(bucketRaw).Delete(key); err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Delete(key)
	})
}

// ListDocuments returns all documents ordered by ID, without raw bytes.
func (s *Store) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return s.list(func(domain.Document) bool { return true })
}

// ListByTicker returns documents associated with a ticker, ignoring case.
func (s *Store) ListByTicker(_ context.Context, ticker string) ([]domain.Document, error) {
	if ticker == "" {
		return nil, nil
	}
	return s.list(func(d domain.Document) bool { return strings.EqualFold(d.Ticker, ticker) })
}

func (s *Store) list(keep func(domain.Document) bool) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(_, v []byte) error {
			var d domain.Document
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("decoding document: %w", err)
			}
			if keep(d) {
				docs = append(docs, d)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// Keys are already sorted; keep the guarantee explicit.
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
