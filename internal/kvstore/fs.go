package kvstore

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
)

// FSStore keeps one file per key under a base directory. Keys are
// url-escaped so role-scoped keys like "testHistory_parent" stay
// readable on disk while anything unusual remains safe.
type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.base, url.PathEscape(key))
}

func (s *FSStore) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("empty key")
	}
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (s *FSStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("empty key")
	}
	return os.WriteFile(s.path(key), []byte(value), 0o644)
}

func (s *FSStore) Remove(_ context.Context, key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
