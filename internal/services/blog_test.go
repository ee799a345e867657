package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlogLifecycle(t *testing.T) {
	media := &recordingMedia{}
	repo := newMemoryBlogs()
	svc := NewBlogService(repo, media, nil)
	ctx := context.Background()

	picture := pngFile("cover.png")
	blog, err := svc.Create(ctx, alice, validContent(), &picture)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/1-cover.png", blog.Picture)

	got, err := svc.Get(ctx, blog.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.Title, got.Title)

	_, err = svc.Update(ctx, bob, blog.ID, ContentPatch{Description: strPtr("nope")}, nil)
	assert.True(t, errors.Is(err, ErrForbidden))

	next := pngFile("next.png")
	updated, err := svc.Update(ctx, alice, blog.ID, ContentPatch{Description: strPtr("edited")}, &next)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Description)
	assert.Equal(t, "/uploads/2-next.png", updated.Picture)
	assert.Equal(t, []string{"/uploads/1-cover.png"}, media.deletes)

	require.NoError(t, svc.Delete(ctx, admin, blog.ID))
	assert.Equal(t, []string{"/uploads/1-cover.png", "/uploads/2-next.png"}, media.deletes)

	_, err = svc.Get(ctx, blog.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBlogWithoutPicture(t *testing.T) {
	media := &recordingMedia{}
	svc := NewBlogService(newMemoryBlogs(), media, nil)
	ctx := context.Background()

	blog, err := svc.Create(ctx, alice, validContent(), nil)
	require.NoError(t, err)
	assert.Empty(t, blog.Picture)

	require.NoError(t, svc.Delete(ctx, alice, blog.ID))
	assert.Empty(t, media.deletes)
}

func TestBlogUploadFailure(t *testing.T) {
	media := &recordingMedia{failOn: 1}
	repo := newMemoryBlogs()
	svc := NewBlogService(repo, media, nil)

	picture := pngFile("cover.png")
	_, err := svc.Create(context.Background(), alice, validContent(), &picture)
	assert.True(t, errors.Is(err, ErrUpload))
	assert.Empty(t, repo.blogs)
}
