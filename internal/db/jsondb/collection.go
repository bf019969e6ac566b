// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// initCollection creates filename holding an empty array unless it exists.
func initCollection(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return writeCollection[any](filename, nil)
	} else if err != nil {
		return err
	}
	return nil
}

// readCollection decodes the JSON array stored in filename.
func readCollection[T any](filename string) ([]T, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var res []T
	if err := json.NewDecoder(f).Decode(&res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []T{}
	}
	return res, nil
}

// writeCollection replaces filename with items. The data goes to a temp file
// next to the target first and is renamed over it, so readers see either the
// old or the new collection.
func writeCollection[T any](filename string, items []T) (err error) {
	if items == nil {
		items = []T{}
	}
	fileData, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(fileData); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}
