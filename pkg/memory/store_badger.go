package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerDocumentKey = "anima:memory:document"

// BadgerStore persists the document under a single key in a Badger
// database. It owns the database handle.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database at path.
func NewBadgerStore(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, fmt.Errorf("memory: badger store path cannot be empty")
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("memory: open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreWithDB wraps an externally managed database. Close
// still closes it.
func NewBadgerStoreWithDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Load reads and decodes the document.
func (s *BadgerStore) Load(ctx context.Context) (*Document, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerDocumentKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &Document{Version: DocumentVersion}, nil
		}
		return nil, fmt.Errorf("memory: read document: %w", err)
	}
	return decodeDocument(data)
}

// Save writes the encoded document under the document key.
func (s *BadgerStore) Save(ctx context.Context, doc *Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerDocumentKey), data)
	})
	if err != nil {
		return fmt.Errorf("memory: write document: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
