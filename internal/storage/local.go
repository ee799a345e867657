package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalClient stores objects on the local filesystem. It is meant for
// development; objects are served by the API server itself.
type LocalClient struct {
	dir        string
	publicBase string
}

// NewLocalClient constructs a filesystem backend rooted at dir.
func NewLocalClient(dir, publicBase string) (*LocalClient, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local storage directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &LocalClient{
		dir:        abs,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// EnsureBucket creates the upload directory.
func (l *LocalClient) EnsureBucket(ctx context.Context) error {
	return os.MkdirAll(l.UploadsDir(), 0o755)
}

// Put writes an object to disk. Existing objects are never overwritten.
func (l *LocalClient) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	dst, err := l.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	file, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(dst)
		return err
	}
	return file.Close()
}

// Delete removes an object from disk.
func (l *LocalClient) Delete(ctx context.Context, key string) error {
	dst, err := l.pathFor(key)
	if err != nil {
		return err
	}
	return os.Remove(dst)
}

func (l *LocalClient) PublicURL(key string) string {
	return l.publicBase + "/" + key
}

func (l *LocalClient) Name() string {
	return "local"
}

// UploadsDir is the directory served under /uploads.
func (l *LocalClient) UploadsDir() string {
	return filepath.Join(l.dir, keyPrefix)
}

func (l *LocalClient) pathFor(key string) (string, error) {
	dst := filepath.Join(l.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.dir, dst)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("object key %q escapes storage directory", key)
	}
	return dst, nil
}
