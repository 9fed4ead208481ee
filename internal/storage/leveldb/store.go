// Package leveldb provides a LevelDB-backed host store.
package leveldb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/yndnr/webstash-go/pkg/entry"
)

const keyPrefix = "webstash/"

// Store keeps entries under a namespace prefix in a LevelDB database.
// Keys enumerate in lexicographic order.
type Store struct {
	db     *leveldb.DB
	prefix []byte
}

// Open opens the database directory at path. An empty path uses
// in-memory storage.
func Open(path, namespace string) (*Store, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, &opt.Options{})
		if lerrors.IsCorrupted(err) {
			db, err = leveldb.RecoverFile(path, nil)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb: open: %w", err)
	}
	return New(db, namespace), nil
}

// New wraps an open database. The store takes ownership of db.
func New(db *leveldb.DB, namespace string) *Store {
	if namespace == "" {
		namespace = "default"
	}
	return &Store{
		db:     db,
		prefix: []byte(keyPrefix + namespace + "/"),
	}
}

func (s *Store) key(k string) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	return append(out, k...)
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(_ context.Context, key string) (string, bool, error) {
	v, err := s.db.Get(s.key(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("leveldb: get: %w", err)
	}
	return string(v), true, nil
}

// SetItem stores key.
func (s *Store) SetItem(_ context.Context, key, value string) error {
	if err := s.db.Put(s.key(key), []byte(value), nil); err != nil {
		return fmt.Errorf("leveldb: put: %w", err)
	}
	return nil
}

// RemoveItem deletes key. Deleting an absent key is not an error in LevelDB.
func (s *Store) RemoveItem(_ context.Context, key string) error {
	if err := s.db.Delete(s.key(key), nil); err != nil {
		return fmt.Errorf("leveldb: delete: %w", err)
	}
	return nil
}

// Len counts the keys in the namespace.
func (s *Store) Len(ctx context.Context) (int, error) {
	n := 0
	err := s.iterate(ctx, func(_, _ []byte) bool {
		n++
		return true
	})
	return n, err
}

// Key returns the index-th key in lexicographic order.
func (s *Store) Key(ctx context.Context, index int) (string, bool, error) {
	if index < 0 {
		return "", false, nil
	}
	var (
		found string
		ok    bool
		i     int
	)
	err := s.iterate(ctx, func(k, _ []byte) bool {
		if i == index {
			found, ok = string(k), true
			return false
		}
		i++
		return true
	})
	return found, ok, err
}

// Range calls fn for every entry in key order until fn returns false.
func (s *Store) Range(ctx context.Context, fn func(key, value string) bool) error {
	return s.iterate(ctx, func(k, v []byte) bool {
		return fn(string(k), string(v))
	})
}

// iterate walks a snapshot of the namespace. Slices passed to fn are only
// valid for the duration of the call.
func (s *Store) iterate(ctx context.Context, fn func(key, value []byte) bool) error {
	it := s.db.NewIterator(util.BytesPrefix(s.prefix), nil)
	defer it.Release()

	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn(bytes.TrimPrefix(it.Key(), s.prefix), it.Value()) {
			break
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("leveldb: iterate: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

var (
	_ entry.Store  = (*Store)(nil)
	_ entry.Ranger = (*Store)(nil)
)
