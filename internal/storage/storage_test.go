package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sendico/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	puts       []string
	deletes    []string
	failPut    bool
	failDelete bool
}

func (r *recordingBackend) EnsureBucket(ctx context.Context) error { return nil }

func (r *recordingBackend) Put(ctx context.Context, key string, rd io.Reader, size int64, contentType string) error {
	if r.failPut {
		return errors.New("boom")
	}
	r.puts = append(r.puts, key)
	return nil
}

func (r *recordingBackend) Delete(ctx context.Context, key string) error {
	r.deletes = append(r.deletes, key)
	if r.failDelete {
		return errors.New("boom")
	}
	return nil
}

func (r *recordingBackend) PublicURL(key string) string {
	return "https://cdn.example.com/media/" + key
}

func (r *recordingBackend) Name() string { return "recording" }

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"photo.PNG":            "photo.png",
		"my photo (1).jpg":     "my-photo-1.jpg",
		"../../etc/passwd.gif": "passwd.gif",
		`C:\Users\me\cat.webp`: "cat.webp",
		"":                     "file",
		"....png":              "file.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestUploadGeneratesDistinctKeys(t *testing.T) {
	backend := &recordingBackend{}
	s := NewStorage(backend)
	fixed := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return fixed }

	first, err := s.Upload(context.Background(), []byte("a"), "photo.png", "image/png")
	require.NoError(t, err)
	second, err := s.Upload(context.Background(), []byte("bb"), "photo.png", "image/png")
	require.NoError(t, err)

	require.Len(t, backend.puts, 2)
	assert.NotEqual(t, backend.puts[0], backend.puts[1])
	assert.True(t, strings.HasPrefix(backend.puts[0], "uploads/1700000000000-"))
	assert.True(t, strings.HasSuffix(backend.puts[0], "-photo.png"))
	assert.Equal(t, "https://cdn.example.com/media/"+backend.puts[0], first.URL)
	assert.Equal(t, int64(2), second.Size)
}

func TestUploadWrapsBackendFailure(t *testing.T) {
	s := NewStorage(&recordingBackend{failPut: true})
	_, err := s.Upload(context.Background(), []byte("a"), "photo.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording upload failed")
}

func TestDeleteResolvesKeys(t *testing.T) {
	backend := &recordingBackend{}
	s := NewStorage(backend)
	ctx := context.Background()

	s.Delete(ctx, "https://cdn.example.com/media/uploads/1-a-photo.png")
	s.Delete(ctx, "https://elsewhere.example.com/bucket/uploads/2-b-photo.png")
	s.Delete(ctx, "/uploads/3-c-photo.png")
	s.Delete(ctx, "uploads/4-d-photo.png")

	assert.Equal(t, []string{
		"uploads/1-a-photo.png",
		"uploads/2-b-photo.png",
		"uploads/3-c-photo.png",
		"uploads/4-d-photo.png",
	}, backend.deletes)
}

func TestDeleteSkipsUnsafeIdentifiers(t *testing.T) {
	backend := &recordingBackend{}
	s := NewStorage(backend)
	ctx := context.Background()

	s.Delete(ctx, "")
	s.Delete(ctx, "uploads/../config.env")
	s.Delete(ctx, "https://example.com/avatar.png")
	s.Delete(ctx, "secrets/key.pem")

	assert.Empty(t, backend.deletes)
}

func TestDeleteAbsorbsBackendFailure(t *testing.T) {
	backend := &recordingBackend{failDelete: true}
	s := NewStorage(backend)
	assert.NotPanics(t, func() {
		s.DeleteAll(context.Background(), []string{"uploads/1-a.png", "uploads/2-b.png"})
	})
	assert.Len(t, backend.deletes, 2)
}

func TestDeleteAllResolvesEachIdentifier(t *testing.T) {
	backend := &recordingBackend{}
	s := NewStorage(backend)

	s.DeleteAll(context.Background(), []string{
		"https://cdn.example.com/media/uploads/1-a.png",
		"",
		"uploads/2-b.png",
		"uploads/../escape.png",
	})

	assert.Equal(t, []string{"uploads/1-a.png", "uploads/2-b.png"}, backend.deletes)
}

func TestLocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	local, err := NewLocalClient(dir, "")
	require.NoError(t, err)
	s := NewStorage(local)
	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	res, err := s.Upload(ctx, []byte("pixels"), "cat.png", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "/uploads/"))

	onDisk := filepath.Join(dir, "uploads", res.FileName)
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	s.Delete(ctx, res.URL)
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	local, err := NewLocalClient(t.TempDir(), "http://localhost:3000")
	require.NoError(t, err)
	err = local.Put(context.Background(), "../outside.png", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
	assert.Equal(t, "http://localhost:3000/uploads/a.png", local.PublicURL("uploads/a.png"))
}

func TestNewSelectsDriver(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.StorageConfig{Driver: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "local", s.BackendName())
	_, ok := s.Local()
	assert.True(t, ok)

	s, err = New(ctx, config.StorageConfig{Driver: "FTP"})
	require.NoError(t, err)
	assert.Equal(t, "ftp", s.BackendName())
	_, err = s.Upload(ctx, []byte("x"), "a.png", "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
	assert.ErrorIs(t, s.EnsureBucket(ctx), ErrUnsupportedBackend)

	_, err = New(ctx, config.StorageConfig{Driver: "dropbox"})
	assert.Error(t, err)

	_, err = New(ctx, config.StorageConfig{Driver: "s3"})
	assert.Error(t, err)
}

func TestPublicReadPolicyNamesBucket(t *testing.T) {
	policy := publicReadPolicy("media")
	assert.Contains(t, policy, `"arn:aws:s3:::media/*"`)
	assert.Contains(t, policy, `"s3:GetObject"`)
}
