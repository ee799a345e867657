package storage

import (
	"context"
	"fmt"
	"io"
)

// UnsupportedBackend stands in for a recognized driver with no
// implementation. Every operation fails with ErrUnsupportedBackend.
type UnsupportedBackend struct {
	name string
}

func NewUnsupportedBackend(name string) *UnsupportedBackend {
	return &UnsupportedBackend{name: name}
}

func (u *UnsupportedBackend) EnsureBucket(ctx context.Context) error {
	return u.err()
}

func (u *UnsupportedBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return u.err()
}

func (u *UnsupportedBackend) Delete(ctx context.Context, key string) error {
	return u.err()
}

func (u *UnsupportedBackend) PublicURL(key string) string {
	return "/" + key
}

func (u *UnsupportedBackend) Name() string {
	return u.name
}

func (u *UnsupportedBackend) err() error {
	return fmt.Errorf("%w: %s is not configured", ErrUnsupportedBackend, u.name)
}
