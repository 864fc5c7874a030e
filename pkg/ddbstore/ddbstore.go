// Package ddbstore is a bbolt-backed reference implementation of
// vault.Driver: a pk/sk-keyed bucket for base and term rows plus a
// second bucket used as the term secondary index, mirroring a
// DynamoDB-shaped table with a GSI on bbolt's ordered byte keys.
// Adapted from the teacher's pkg/storage.BoltStore bucket-per-entity,
// JSON-value pattern.
package ddbstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/vaultindex/internal/vlog"
	"github.com/cuemby/vaultindex/pkg/vault"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

var (
	bucketRows = []byte("rows")  // "pk\x00sk" -> wireEntry
	bucketTerm = []byte("terms") // term -> "pk\x00sk" (pointer back into bucketRows)
)

// Store is a bbolt-backed vault.Driver.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database under dataDir.
func Open(dataDir string) (*Store, error) {
	dbPath := filepath.Join(dataDir, "vaultindex.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindStorage, "ddbstore.Open", fmt.Errorf("opening database: %w", err))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRows); err != nil {
			return fmt.Errorf("creating rows bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketTerm); err != nil {
			return fmt.Errorf("creating terms bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, vaulterr.Wrap(vaulterr.KindStorage, "ddbstore.Open", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ vault.Driver = (*Store)(nil)

func rowKey(pk, sk string) []byte {
	return []byte(pk + "\x00" + sk)
}

// PutItems writes a batch of rows (a base row plus its term rows) in a
// single transaction. A term row is additionally indexed under its
// term alone, mirroring a global secondary index with no partition-key
// component, so QueryByTerm can find it without knowing its pk.
func (s *Store) PutItems(ctx context.Context, items []vault.TableEntry) error {
	if len(items) == 0 {
		return nil
	}

	logger := vlog.Logger.With().Int("count", len(items)).Logger()
	logger.Debug().Msg("putting items")

	return s.db.Update(func(tx *bolt.Tx) error {
		rows := tx.Bucket(bucketRows)
		terms := tx.Bucket(bucketTerm)

		for _, item := range items {
			w := toWire(item)
			data, err := json.Marshal(w)
			if err != nil {
				return fmt.Errorf("marshaling row: %w", err)
			}
			key := rowKey(item.PK, item.SK)
			if err := rows.Put(key, data); err != nil {
				return fmt.Errorf("putting row: %w", err)
			}
			if len(item.Term) > 0 {
				if err := terms.Put(item.Term, key); err != nil {
					return fmt.Errorf("indexing term: %w", err)
				}
			}
		}
		return nil
	})
}

// GetItem looks up a single row by its exact primary key.
func (s *Store) GetItem(ctx context.Context, pk, sk string) (vault.TableEntry, bool, error) {
	var entry vault.TableEntry
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		rows := tx.Bucket(bucketRows)
		data := rows.Get(rowKey(pk, sk))
		if data == nil {
			return nil
		}
		var w wireEntry
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("unmarshaling row: %w", err)
		}
		entry = fromWire(w)
		found = true
		return nil
	})
	if err != nil {
		return vault.TableEntry{}, false, vaulterr.Wrap(vaulterr.KindStorage, "Store.GetItem", err)
	}
	return entry, found, nil
}

// QueryByTerm looks up every row whose term matches, with no partition
// key required, and resolves each one to the stored term row it points
// at (a copy of the base row's attributes) — the read-side analogue of a DynamoDB query against a GSI with
// key condition expression "term = :term".
func (s *Store) QueryByTerm(ctx context.Context, term []byte) ([]vault.TableEntry, error) {
	var out []vault.TableEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		rows := tx.Bucket(bucketRows)
		terms := tx.Bucket(bucketTerm)

		key := terms.Get(term)
		if key == nil {
			return nil
		}
		data := rows.Get(key)
		if data == nil {
			return vaulterr.Wrap(vaulterr.KindStorage, "Store.QueryByTerm", vaulterr.ErrNotFound)
		}
		var w wireEntry
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("unmarshaling row: %w", err)
		}
		out = append(out, fromWire(w))
		return nil
	})
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindStorage, "Store.QueryByTerm", err)
	}
	return out, nil
}
