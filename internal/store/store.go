// Package store keeps finished match results so a report can be fetched or
// downloaded after the JSON response was shown.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"match-service/internal/reconcile/model"
)

const bucketResults = "results"

var ErrNotFound = errors.New("report not found")

type Store struct {
	db *bolt.DB
}

type entry struct {
	Created time.Time    `json:"created"`
	Result  model.Result `json:"result"`
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketResults))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

// Put stores res under a new id and returns it; res.ID is set to the id.
func (s *Store) Put(res model.Result) (string, error) {
	id := uuid.NewString()
	res.ID = id
	data, err := json.Marshal(entry{Created: time.Now().UTC(), Result: res})
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketResults)).Put([]byte(id), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store result: %w", err)
	}
	return id, nil
}

func (s *Store) Get(id string) (model.Result, error) {
	var e entry
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketResults)).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("get %s: %w", id, err)
	}
	return e.Result, nil
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketResults))
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("delete %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}

// Prune removes results created before now-maxAge and returns how many.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	n := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketResults))
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e struct {
				Created time.Time `json:"created"`
			}
			if err := json.Unmarshal(v, &e); err != nil || e.Created.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		n = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	return n, nil
}
