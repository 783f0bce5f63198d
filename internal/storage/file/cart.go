// Package file persists a single cart on the local filesystem.
package file

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
)

// CartStore is a cart.Store backed by one file.
type CartStore struct {
	path string
}

var _ cart.Store = (*CartStore)(nil)

// NewCartStore stores the cart at path.
func NewCartStore(path string) *CartStore {
	return &CartStore{path: path}
}

// DefaultCartPath returns the per-user cart location.
func DefaultCartPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "user config dir")
	}
	return filepath.Join(dir, "arboom", "cart.json"), nil
}

// Path returns the file location.
func (s *CartStore) Path() string {
	return s.path
}

func (s *CartStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cart.ErrNoCart
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cart")
	}
	return data, nil
}

// Save replaces the file atomically so a crash never leaves half a cart.
func (s *CartStore) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create cart dir")
	}

	tmp, err := os.CreateTemp(dir, ".cart-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "rename")
	}
	return nil
}
