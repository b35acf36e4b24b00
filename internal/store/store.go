// Package store persists label sets in an embedded badger database, keyed by
// dataset and stream name.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Load when no label set was saved for a stream.
var ErrNotFound = errors.New("label set not found")

const keyPrefix = "labels/"

// Store is a label-set store backed by badger.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(filepath.Join(dir, "badger"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open label store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory label store: %w", err)
	}
	return &Store{db: db}, nil
}

func key(dataset, stream string) []byte {
	return []byte(keyPrefix + dataset + "/" + stream)
}

// Save replaces the label set of one stream.
func (s *Store) Save(dataset, stream string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(dataset, stream), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save labels for %s/%s: %w", dataset, stream, err)
	}
	log.WithFields(log.Fields{"dataset": dataset, "stream": stream, "bytes": len(data)}).Debug("labels saved")
	return nil
}

// Load returns the saved label set of one stream.
func (s *Store) Load(dataset, stream string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(dataset, stream))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load labels for %s/%s: %w", dataset, stream, err)
	}
	return data, nil
}

// Delete removes the label set of one stream. Deleting a missing set is not
// an error.
func (s *Store) Delete(dataset, stream string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(dataset, stream))
	})
	if err != nil {
		return fmt.Errorf("failed to delete labels for %s/%s: %w", dataset, stream, err)
	}
	return nil
}

// Streams lists the stream names with a saved label set for dataset.
func (s *Store) Streams(dataset string) ([]string, error) {
	prefix := []byte(keyPrefix + dataset + "/")
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list label sets of %s: %w", dataset, err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
