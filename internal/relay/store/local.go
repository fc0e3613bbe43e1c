package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps artifacts as files named by hash under a base directory.
type LocalStore struct {
	basePath string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{basePath: basePath}, nil
}

func (l *LocalStore) path(hash string) string {
	return filepath.Join(l.basePath, hash)
}

// Put writes the bytes to a temp file first and renames it into place. If
// the destination already exists the temp copy is discarded: by the hash
// guarantee the stored bytes are identical, so re-uploads are no-ops.
func (l *LocalStore) Put(ctx context.Context, hash string, data io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(l.basePath, "upload-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("stage artifact %s: %w", hash, err)
	}

	final := l.path(hash)
	if _, err := os.Stat(final); err == nil {
		return size, nil
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		// A concurrent writer may have won the rename; that copy is as good.
		if _, statErr := os.Stat(final); statErr == nil {
			return size, nil
		}
		return 0, err
	}
	return size, nil
}

func (l *LocalStore) Get(ctx context.Context, hash string) (io.ReadCloser, error) {
	return os.Open(l.path(hash))
}

func (l *LocalStore) Exists(ctx context.Context, hash string) (bool, error) {
	_, err := os.Stat(l.path(hash))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *LocalStore) Delete(ctx context.Context, hash string) error {
	return os.Remove(l.path(hash))
}
