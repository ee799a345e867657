package services

import (
	"context"
	"time"

	"github.com/sendico/apiserver/internal/auth"
	"github.com/sendico/apiserver/types"
)

// BlogRepository defines persistence operations for blogs.
type BlogRepository interface {
	List(ctx context.Context, title string, offset, limit int) ([]types.Blog, int, error)
	Get(ctx context.Context, id string) (types.Blog, error)
	Create(ctx context.Context, blog types.Blog) (types.Blog, error)
	Update(ctx context.Context, blog types.Blog) (types.Blog, error)
	Delete(ctx context.Context, id string) error
}

// BlogService encapsulates blog use-cases. Blogs follow the posting rules
// with a single optional picture.
type BlogService struct {
	repo   BlogRepository
	media  MediaStore
	events *Events
}

func NewBlogService(repo BlogRepository, media MediaStore, events *Events) *BlogService {
	return &BlogService{repo: repo, media: media, events: events}
}

func (s *BlogService) Create(ctx context.Context, id auth.Identity, input ContentInput, picture *File) (types.Blog, error) {
	if err := validateInput(input); err != nil {
		return types.Blog{}, err
	}
	date, _ := time.Parse(DateLayout, input.Date)

	var pictureURL string
	if picture != nil {
		urls, err := uploadAll(ctx, s.media, []File{*picture})
		if err != nil {
			return types.Blog{}, err
		}
		pictureURL = urls[0]
	}

	blog, err := s.repo.Create(ctx, types.Blog{
		Title:       input.Title,
		Description: input.Description,
		Date:        date,
		Picture:     pictureURL,
		Owner:       id.Username,
	})
	if err != nil {
		s.media.DeleteAll(ctx, []string{pictureURL})
		return types.Blog{}, fromStore(err, "blog")
	}

	s.events.Emit(ctx, types.EventBlogCreated, blog.ID, id.Username)
	return blog, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (types.Blog, error) {
	blog, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Blog{}, fromStore(err, "blog")
	}
	return blog, nil
}

func (s *BlogService) Search(ctx context.Context, query SearchQuery) ([]types.Blog, Paging, error) {
	query, offset, err := normalizeSearch(query)
	if err != nil {
		return nil, Paging{}, err
	}
	blogs, total, err := s.repo.List(ctx, query.Title, offset, query.Size)
	if err != nil {
		return nil, Paging{}, fromStore(err, "blog")
	}
	return blogs, pagingFor(query, total), nil
}

// Update applies patch; a new picture replaces the old one, which is then
// deleted from storage.
func (s *BlogService) Update(ctx context.Context, id auth.Identity, blogID string, patch ContentPatch, picture *File) (types.Blog, error) {
	if err := validateInput(patch); err != nil {
		return types.Blog{}, err
	}

	blog, err := s.repo.Get(ctx, blogID)
	if err != nil {
		return types.Blog{}, fromStore(err, "blog")
	}
	if !auth.CanModify(id, blog.Owner) {
		return types.Blog{}, newError(ErrForbidden, "Forbidden")
	}

	applyPatch(patch, &blog.Title, &blog.Description, &blog.Date)

	var replaced string
	if picture != nil {
		urls, err := uploadAll(ctx, s.media, []File{*picture})
		if err != nil {
			return types.Blog{}, err
		}
		replaced = blog.Picture
		blog.Picture = urls[0]
	}

	updated, err := s.repo.Update(ctx, blog)
	if err != nil {
		if picture != nil {
			s.media.DeleteAll(ctx, []string{blog.Picture})
		}
		return types.Blog{}, fromStore(err, "blog")
	}
	s.media.DeleteAll(ctx, []string{replaced})

	s.events.Emit(ctx, types.EventBlogUpdated, updated.ID, id.Username)
	return updated, nil
}

func (s *BlogService) Delete(ctx context.Context, id auth.Identity, blogID string) error {
	blog, err := s.repo.Get(ctx, blogID)
	if err != nil {
		return fromStore(err, "blog")
	}
	if !auth.CanModify(id, blog.Owner) {
		return newError(ErrForbidden, "Forbidden")
	}
	if err := s.repo.Delete(ctx, blog.ID); err != nil {
		return fromStore(err, "blog")
	}
	s.media.DeleteAll(ctx, []string{blog.Picture})

	s.events.Emit(ctx, types.EventBlogDeleted, blog.ID, id.Username)
	return nil
}
