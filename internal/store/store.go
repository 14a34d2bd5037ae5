// Package store persists editor sessions in an embedded bbolt database.
// Values are stored as YAML documents under string keys in a single bucket.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "threeEdit"

// Store is a key-value store backed by a bbolt file.
type Store struct {
	db     *bolt.DB
	bucket []byte
	log    *zap.Logger
}

// Open opens or creates the database at path.
func Open(path, bucket string, log *zap.Logger) (*Store, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket %s: %w", bucket, err)
	}

	log.Debug("store opened", zap.String("path", path), zap.String("bucket", bucket))
	return &Store{db: db, bucket: []byte(bucket), log: log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores v under key, replacing any previous value.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	s.log.Debug("saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Load decodes the value under key into v. It reports false when the key is absent.
func (s *Store) Load(ctx context.Context, key string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// Get's slice is only valid inside the transaction
		if b := tx.Bucket(s.bucket).Get([]byte(key)); b != nil {
			data = append([]byte(nil), b...)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if data == nil {
		return false, nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Keys returns all keys in byte order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	return keys, nil
}
