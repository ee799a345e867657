package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/sendico/apiserver/internal/auth"
	"github.com/sendico/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = auth.Identity{Username: "alice"}
	bob   = auth.Identity{Username: "bob"}
	admin = auth.Identity{Username: "root", IsAdmin: true}
)

func validContent() ContentInput {
	return ContentInput{Title: "Launch", Description: "We are live", Date: "2024-03-01"}
}

func strPtr(s string) *string { return &s }

func TestCreatePostingUploadsInOrder(t *testing.T) {
	media := &recordingMedia{}
	publisher := &recordingPublisher{}
	svc := NewPostingService(newMemoryPostings(), media, NewEvents(publisher, "events"))

	posting, err := svc.Create(context.Background(), alice, validContent(), []File{pngFile("a.png"), pngFile("b.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/1-a.png", "/uploads/2-b.png"}, posting.Pictures)
	assert.Equal(t, "alice", posting.Owner)
	assert.Equal(t, "2024-03-01", posting.Date.Format(DateLayout))
	assert.Equal(t, []string{types.EventPostingCreated}, publisher.eventTypes())
}

func TestCreatePostingRejectsTooManyPictures(t *testing.T) {
	media := &recordingMedia{}
	repo := newMemoryPostings()
	svc := NewPostingService(repo, media, nil)

	files := []File{pngFile("1.png"), pngFile("2.png"), pngFile("3.png"), pngFile("4.png")}
	_, err := svc.Create(context.Background(), alice, validContent(), files)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Zero(t, media.attempts)
	assert.Empty(t, repo.postings)
}

func TestCreatePostingValidation(t *testing.T) {
	svc := NewPostingService(newMemoryPostings(), &recordingMedia{}, nil)
	input := ContentInput{Title: "", Description: "", Date: "01/03/2024"}

	_, err := svc.Create(context.Background(), alice, input, nil)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"is required"}, svcErr.Fields["title"])
	assert.Equal(t, []string{"must be a date in YYYY-MM-DD format"}, svcErr.Fields["date"])
}

func TestCreatePostingUploadFailureRollsBack(t *testing.T) {
	media := &recordingMedia{failOn: 2}
	repo := newMemoryPostings()
	svc := NewPostingService(repo, media, nil)

	_, err := svc.Create(context.Background(), alice, validContent(), []File{pngFile("a.png"), pngFile("b.png"), pngFile("c.png")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpload))
	assert.Equal(t, []string{"/uploads/1-a.png"}, media.deletes)
	assert.Empty(t, repo.postings)
}

func TestUpdatePostingOwnership(t *testing.T) {
	media := &recordingMedia{}
	repo := newMemoryPostings()
	svc := NewPostingService(repo, media, nil)
	ctx := context.Background()

	posting, err := svc.Create(ctx, alice, validContent(), []File{pngFile("a.png")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob, posting.ID, ContentPatch{Title: strPtr("Hijacked")}, nil)
	assert.True(t, errors.Is(err, ErrForbidden))
	stored, _ := repo.Get(ctx, posting.ID)
	assert.Equal(t, "Launch", stored.Title)

	updated, err := svc.Update(ctx, alice, posting.ID, ContentPatch{Title: strPtr("Relaunch")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Relaunch", updated.Title)
	assert.Equal(t, posting.Pictures, updated.Pictures)

	updated, err = svc.Update(ctx, admin, posting.ID, ContentPatch{Date: strPtr("2025-01-02")}, []File{pngFile("b.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/2-b.png"}, updated.Pictures)
	assert.Equal(t, "2025-01-02", updated.Date.Format(DateLayout))
	assert.Equal(t, []string{"/uploads/1-a.png"}, media.deletes)

	_, err = svc.Update(ctx, alice, "missing", ContentPatch{}, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeletePosting(t *testing.T) {
	media := &recordingMedia{}
	repo := newMemoryPostings()
	svc := NewPostingService(repo, media, nil)
	ctx := context.Background()

	posting, err := svc.Create(ctx, alice, validContent(), []File{pngFile("a.png"), pngFile("b.png")})
	require.NoError(t, err)

	assert.True(t, errors.Is(svc.Delete(ctx, bob, posting.ID), ErrForbidden))
	require.NoError(t, svc.Delete(ctx, alice, posting.ID))
	assert.Equal(t, posting.Pictures, media.deletes)
	assert.True(t, errors.Is(svc.Delete(ctx, alice, posting.ID), ErrNotFound))
}

func TestSearchPostingsPaging(t *testing.T) {
	repo := newMemoryPostings()
	svc := NewPostingService(repo, &recordingMedia{}, nil)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		input := validContent()
		input.Title = fmt.Sprintf("Item %02d", i)
		_, err := svc.Create(ctx, alice, input, nil)
		require.NoError(t, err)
	}

	postings, paging, err := svc.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, Paging{CurrentPage: 1, TotalPage: 3, Size: 10}, paging)
	require.Len(t, postings, 10)
	assert.Equal(t, "Item 25", postings[0].Title)

	postings, paging, err = svc.Search(ctx, SearchQuery{Page: 3, Size: 10})
	require.NoError(t, err)
	assert.Len(t, postings, 5)
	assert.Equal(t, 3, paging.CurrentPage)

	postings, paging, err = svc.Search(ctx, SearchQuery{Title: "item 1"})
	require.NoError(t, err)
	assert.Len(t, postings, 10)
	assert.Equal(t, 1, paging.TotalPage)

	_, _, err = svc.Search(ctx, SearchQuery{Size: 101})
	assert.True(t, errors.Is(err, ErrValidation))
	_, _, err = svc.Search(ctx, SearchQuery{Page: -1})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestEventsPayload(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	events := NewEvents(publisher, "apiserver.events")

	assert.NotPanics(t, func() {
		events.Emit(context.Background(), types.EventBlogDeleted, "blog-1", "alice")
	})
	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "apiserver.events", publisher.channels[0])
	assert.Equal(t, "application/json", publisher.attrs[0]["content_type"])

	var event types.Event
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	assert.Equal(t, types.EventBlogDeleted, event.Type)
	assert.Equal(t, "blog-1", event.ResourceID)
	assert.Equal(t, "alice", event.Actor)

	var disabled *Events
	assert.NotPanics(t, func() { disabled.Emit(context.Background(), "x", "y", "z") })
}
