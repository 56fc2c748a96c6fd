package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StorageClient is the object-storage collaborator. The engine only keeps the
// returned key; bytes live wherever the implementation puts them.
type StorageClient interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type localStorageClient struct {
	dir string
}

// NewLocalStorageClient stores uploads on the local filesystem under dir.
func NewLocalStorageClient(dir string) (StorageClient, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &localStorageClient{dir: dir}, nil
}

func (c *localStorageClient) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := uuid.NewString() + filepath.Ext(name)
	if err := os.WriteFile(filepath.Join(c.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}
	return key, nil
}

func (c *localStorageClient) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(c.dir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload %s: %w", key, err)
	}
	return nil
}
