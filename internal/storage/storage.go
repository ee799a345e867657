package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sendico/apiserver/config"
	"github.com/sendico/apiserver/internal/logger"
)

const (
	keyPrefix       = "uploads"
	maxBaseNameSize = 80
)

// ErrUnsupportedBackend is returned by every operation of a storage driver
// that is recognized but not implemented.
var ErrUnsupportedBackend = errors.New("storage backend is not supported")

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Backend defines common object operations across storage providers.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	Name() string
}

// UploadResult describes a stored object.
type UploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// Storage wraps a Backend with collision-free naming and best-effort deletes.
type Storage struct {
	backend Backend
	now     func() time.Time
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend Backend) *Storage {
	return &Storage{backend: backend, now: time.Now}
}

// New selects and constructs the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend Backend
		err     error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "local":
		backend, err = NewLocalClient(cfg.LocalDir, cfg.PublicBase)
	case "s3":
		backend, err = NewMinioClient(cfg.S3, cfg.PublicBase)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS, cfg.PublicBase)
	case "ftp":
		backend = NewUnsupportedBackend("ftp")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return NewStorage(backend), nil
}

// EnsureBucket prepares the backend to accept uploads.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// BackendName returns the configured driver name.
func (s *Storage) BackendName() string {
	return s.backend.Name()
}

// Local returns the filesystem backend when it is the configured driver.
func (s *Storage) Local() (*LocalClient, bool) {
	local, ok := s.backend.(*LocalClient)
	return local, ok
}

// Upload stores data under a freshly generated key derived from name and
// returns its public URL. Callers validate the content before calling.
func (s *Storage) Upload(ctx context.Context, data []byte, name, mimeType string) (UploadResult, error) {
	key := s.newKey(name)
	size := int64(len(data))
	if err := s.backend.Put(ctx, key, bytes.NewReader(data), size, mimeType); err != nil {
		return UploadResult{}, fmt.Errorf("%s upload failed: %w", s.backend.Name(), err)
	}
	return UploadResult{
		URL:      s.backend.PublicURL(key),
		FileName: path.Base(key),
		Size:     size,
	}, nil
}

// Delete removes the object identified by a URL returned from Upload or by
// its raw key. Failures are logged and never returned.
func (s *Storage) Delete(ctx context.Context, identifier string) {
	if strings.TrimSpace(identifier) == "" {
		return
	}
	key, err := s.resolveKey(identifier)
	if err != nil {
		logger.Warningf("storage delete skipped for %q: %v", identifier, err)
		return
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		logger.Warningf("storage delete failed for %q: %v", key, err)
		return
	}
	logger.Debugf("storage deleted %q", key)
}

// DeleteAll best-effort deletes every identifier.
func (s *Storage) DeleteAll(ctx context.Context, identifiers []string) {
	for _, identifier := range identifiers {
		s.Delete(ctx, identifier)
	}
}

func (s *Storage) newKey(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%d-%s-%s", keyPrefix, s.now().UnixMilli(), suffix, sanitizeName(name))
}

func (s *Storage) resolveKey(identifier string) (string, error) {
	key := strings.TrimSpace(identifier)
	if prefix := s.backend.PublicURL(""); prefix != "/" && strings.HasPrefix(key, prefix) {
		key = strings.TrimPrefix(key, prefix)
	} else if u, err := url.Parse(key); err == nil && (u.Scheme != "" || strings.HasPrefix(key, "/")) {
		idx := strings.Index(u.Path, keyPrefix+"/")
		if idx < 0 {
			return "", errors.New("identifier is not an upload url")
		}
		key = u.Path[idx:]
	}
	key = strings.TrimPrefix(key, "/")
	if !strings.HasPrefix(key, keyPrefix+"/") || path.Clean(key) != key || strings.Contains(key, "..") {
		return "", errors.New("invalid object key")
	}
	return key, nil
}

func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if ext == "." {
		ext = ""
	}
	stem = strings.Trim(unsafeNameChars.ReplaceAllString(stem, "-"), "-.")
	if stem == "" {
		stem = "file"
	}
	if len(stem) > maxBaseNameSize {
		stem = stem[:maxBaseNameSize]
	}
	return stem + unsafeNameChars.ReplaceAllString(ext, "")
}
