package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sendico/apiserver/internal/auth"
	"github.com/sendico/apiserver/types"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostingRepository defines persistence operations for postings.
type PostingRepository interface {
	List(ctx context.Context, title string, offset, limit int) ([]types.Posting, int, error)
	Get(ctx context.Context, id string) (types.Posting, error)
	Create(ctx context.Context, posting types.Posting) (types.Posting, error)
	Update(ctx context.Context, posting types.Posting) (types.Posting, error)
	Delete(ctx context.Context, id string) error
}

// ContentInput is the body of a posting or blog create request.
type ContentInput struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required,min=1"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ContentPatch is the body of a posting or blog update request. Nil fields
// are left unchanged.
type ContentPatch struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Date        *string `json:"date" validate:"omitnil,datetime=2006-01-02"`
}

// SearchQuery filters and pages a listing. Zero Page and Size take the
// defaults.
type SearchQuery struct {
	Title string `json:"title"`
	Page  int    `json:"page" validate:"min=1"`
	Size  int    `json:"size" validate:"min=1,max=100"`
}

// Paging describes the page returned by a search.
type Paging struct {
	CurrentPage int `json:"current_page"`
	TotalPage   int `json:"total_page"`
	Size        int `json:"size"`
}

// PostingService encapsulates posting use-cases.
type PostingService struct {
	repo   PostingRepository
	media  MediaStore
	events *Events
}

func NewPostingService(repo PostingRepository, media MediaStore, events *Events) *PostingService {
	return &PostingService{repo: repo, media: media, events: events}
}

// Create stores the pictures in order and then the posting. Nothing is
// persisted if any upload fails.
func (s *PostingService) Create(ctx context.Context, id auth.Identity, input ContentInput, files []File) (types.Posting, error) {
	if err := validateInput(input); err != nil {
		return types.Posting{}, err
	}
	if len(files) > types.MaxPostingPictures {
		return types.Posting{}, fieldError("pictures", fmt.Sprintf("must contain at most %d files", types.MaxPostingPictures))
	}
	date, _ := time.Parse(DateLayout, input.Date)

	pictures, err := uploadAll(ctx, s.media, files)
	if err != nil {
		return types.Posting{}, err
	}

	posting, err := s.repo.Create(ctx, types.Posting{
		Title:       input.Title,
		Description: input.Description,
		Date:        date,
		Pictures:    pictures,
		Owner:       id.Username,
	})
	if err != nil {
		s.media.DeleteAll(ctx, pictures)
		return types.Posting{}, fromStore(err, "posting")
	}

	s.events.Emit(ctx, types.EventPostingCreated, posting.ID, id.Username)
	return posting, nil
}

func (s *PostingService) Get(ctx context.Context, id string) (types.Posting, error) {
	posting, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Posting{}, fromStore(err, "posting")
	}
	return posting, nil
}

// Search lists postings newest first, filtered by a case-insensitive title
// substring.
func (s *PostingService) Search(ctx context.Context, query SearchQuery) ([]types.Posting, Paging, error) {
	query, offset, err := normalizeSearch(query)
	if err != nil {
		return nil, Paging{}, err
	}
	postings, total, err := s.repo.List(ctx, query.Title, offset, query.Size)
	if err != nil {
		return nil, Paging{}, fromStore(err, "posting")
	}
	return postings, pagingFor(query, total), nil
}

// Update applies patch to a posting owned by the caller (or any posting for
// an admin). New files replace the whole picture list.
func (s *PostingService) Update(ctx context.Context, id auth.Identity, postingID string, patch ContentPatch, files []File) (types.Posting, error) {
	if err := validateInput(patch); err != nil {
		return types.Posting{}, err
	}
	if len(files) > types.MaxPostingPictures {
		return types.Posting{}, fieldError("pictures", fmt.Sprintf("must contain at most %d files", types.MaxPostingPictures))
	}

	posting, err := s.repo.Get(ctx, postingID)
	if err != nil {
		return types.Posting{}, fromStore(err, "posting")
	}
	if !auth.CanModify(id, posting.Owner) {
		return types.Posting{}, newError(ErrForbidden, "Forbidden")
	}

	applyPatch(patch, &posting.Title, &posting.Description, &posting.Date)

	var replaced []string
	if len(files) > 0 {
		pictures, err := uploadAll(ctx, s.media, files)
		if err != nil {
			return types.Posting{}, err
		}
		replaced = posting.Pictures
		posting.Pictures = pictures
	}

	updated, err := s.repo.Update(ctx, posting)
	if err != nil {
		if len(files) > 0 {
			s.media.DeleteAll(ctx, posting.Pictures)
		}
		return types.Posting{}, fromStore(err, "posting")
	}
	s.media.DeleteAll(ctx, replaced)

	s.events.Emit(ctx, types.EventPostingUpdated, updated.ID, id.Username)
	return updated, nil
}

// Delete removes a posting and then its pictures.
func (s *PostingService) Delete(ctx context.Context, id auth.Identity, postingID string) error {
	posting, err := s.repo.Get(ctx, postingID)
	if err != nil {
		return fromStore(err, "posting")
	}
	if !auth.CanModify(id, posting.Owner) {
		return newError(ErrForbidden, "Forbidden")
	}
	if err := s.repo.Delete(ctx, posting.ID); err != nil {
		return fromStore(err, "posting")
	}
	s.media.DeleteAll(ctx, posting.Pictures)

	s.events.Emit(ctx, types.EventPostingDeleted, posting.ID, id.Username)
	return nil
}

func normalizeSearch(query SearchQuery) (SearchQuery, int, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Size == 0 {
		query.Size = DefaultPageSize
	}
	if err := validateInput(query); err != nil {
		return SearchQuery{}, 0, err
	}
	return query, (query.Page - 1) * query.Size, nil
}

func pagingFor(query SearchQuery, total int) Paging {
	return Paging{
		CurrentPage: query.Page,
		TotalPage:   (total + query.Size - 1) / query.Size,
		Size:        query.Size,
	}
}

// applyPatch copies the set fields of patch. Dates were validated already.
func applyPatch(patch ContentPatch, title, description *string, date *time.Time) {
	if patch.Title != nil {
		*title = *patch.Title
	}
	if patch.Description != nil {
		*description = *patch.Description
	}
	if patch.Date != nil {
		*date, _ = time.Parse(DateLayout, *patch.Date)
	}
}
