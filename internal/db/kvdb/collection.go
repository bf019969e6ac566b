// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"encoding/json"
	"errors"

	bolt "go.etcd.io/bbolt"
)

// Each collection lives as one JSON array under a single key of its bucket,
// so every mutation rewrites the whole collection inside one transaction.
const collectionKey = "collection"

var errMissingBucket = errors.New("missing bucket")

func createBucket(db *bolt.DB, name string) error {
	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		if bucket.Get([]byte(collectionKey)) == nil {
			return bucket.Put([]byte(collectionKey), []byte("[]"))
		}
		return nil
	})
}

func getCollection[T any](tx *bolt.Tx, name string) ([]T, error) {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return nil, errMissingBucket
	}
	res := []T{}
	raw := bucket.Get([]byte(collectionKey))
	if raw == nil {
		return res, nil
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []T{}
	}
	return res, nil
}

func putCollection[T any](tx *bolt.Tx, name string, items []T) error {
	bucket := tx.Bucket([]byte(name))
	if bucket == nil {
		return errMissingBucket
	}
	if items == nil {
		items = []T{}
	}
	j, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return bucket.Put([]byte(collectionKey), j)
}
