package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sendico/apiserver/internal/storage"
	"github.com/sendico/apiserver/internal/store"
	"github.com/sendico/apiserver/types"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]types.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]types.User)}
}

func (m *memoryUsers) GetByUsername(ctx context.Context, username string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memoryUsers) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		user.PasswordHash = ""
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *memoryUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.Username] = user
	return user, nil
}

func (m *memoryUsers) Update(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.Username] = user
	return user, nil
}

func (m *memoryUsers) Delete(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

type memoryPostings struct {
	mu       sync.Mutex
	seq      int
	postings map[string]types.Posting
}

func newMemoryPostings() *memoryPostings {
	return &memoryPostings{postings: make(map[string]types.Posting)}
}

func (m *memoryPostings) List(ctx context.Context, title string, offset, limit int) ([]types.Posting, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []types.Posting
	for _, posting := range m.postings {
		if strings.Contains(strings.ToLower(posting.Title), strings.ToLower(title)) {
			matched = append(matched, posting)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memoryPostings) Get(ctx context.Context, id string) (types.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posting, ok := m.postings[id]
	if !ok {
		return types.Posting{}, store.ErrNotFound
	}
	return posting, nil
}

func (m *memoryPostings) Create(ctx context.Context, posting types.Posting) (types.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	posting.ID = fmt.Sprintf("posting-%d", m.seq)
	posting.CreatedAt = time.Unix(int64(m.seq), 0)
	posting.UpdatedAt = posting.CreatedAt
	if posting.Pictures == nil {
		posting.Pictures = []string{}
	}
	m.postings[posting.ID] = posting
	return posting, nil
}

func (m *memoryPostings) Update(ctx context.Context, posting types.Posting) (types.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.postings[posting.ID]; !ok {
		return types.Posting{}, store.ErrNotFound
	}
	m.postings[posting.ID] = posting
	return posting, nil
}

func (m *memoryPostings) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.postings[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.postings, id)
	return nil
}

func (m *memoryPostings) MediaByOwner(ctx context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var media []string
	for _, posting := range m.postings {
		if posting.Owner == owner {
			media = append(media, posting.Pictures...)
		}
	}
	sort.Strings(media)
	return media, nil
}

type memoryBlogs struct {
	mu    sync.Mutex
	seq   int
	blogs map[string]types.Blog
}

func newMemoryBlogs() *memoryBlogs {
	return &memoryBlogs{blogs: make(map[string]types.Blog)}
}

func (m *memoryBlogs) List(ctx context.Context, title string, offset, limit int) ([]types.Blog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []types.Blog
	for _, blog := range m.blogs {
		if strings.Contains(strings.ToLower(blog.Title), strings.ToLower(title)) {
			matched = append(matched, blog)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *memoryBlogs) Get(ctx context.Context, id string) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blog, ok := m.blogs[id]
	if !ok {
		return types.Blog{}, store.ErrNotFound
	}
	return blog, nil
}

func (m *memoryBlogs) Create(ctx context.Context, blog types.Blog) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	blog.ID = fmt.Sprintf("blog-%d", m.seq)
	blog.CreatedAt = time.Unix(int64(m.seq), 0)
	blog.UpdatedAt = blog.CreatedAt
	m.blogs[blog.ID] = blog
	return blog, nil
}

func (m *memoryBlogs) Update(ctx context.Context, blog types.Blog) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blogs[blog.ID]; !ok {
		return types.Blog{}, store.ErrNotFound
	}
	m.blogs[blog.ID] = blog
	return blog, nil
}

func (m *memoryBlogs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blogs[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.blogs, id)
	return nil
}

func (m *memoryBlogs) MediaByOwner(ctx context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var media []string
	for _, blog := range m.blogs {
		if blog.Owner == owner && blog.Picture != "" {
			media = append(media, blog.Picture)
		}
	}
	return media, nil
}

var _ MediaStore = (*storage.Storage)(nil)

// recordingMedia stores nothing; it records calls and can fail the nth upload.
type recordingMedia struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	failOn   int
	attempts int
}

func (r *recordingMedia) Upload(ctx context.Context, data []byte, name, mimeType string) (storage.UploadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.failOn > 0 && r.attempts == r.failOn {
		return storage.UploadResult{}, errors.New("disk full")
	}
	url := fmt.Sprintf("/uploads/%d-%s", r.attempts, name)
	r.uploads = append(r.uploads, url)
	return storage.UploadResult{URL: url, FileName: name, Size: int64(len(data))}, nil
}

func (r *recordingMedia) DeleteAll(ctx context.Context, identifiers []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identifier := range identifiers {
		if identifier != "" {
			r.deletes = append(r.deletes, identifier)
		}
	}
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	attrs    []map[string]string
	err      error
}

func (r *recordingPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels = append(r.channels, channel)
	r.payloads = append(r.payloads, data)
	r.attrs = append(r.attrs, attrs)
	return "msg", r.err
}

func (r *recordingPublisher) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.attrs))
	for _, attrs := range r.attrs {
		out = append(out, attrs["type"])
	}
	return out
}

func pngFile(name string) File {
	return File{Name: name, ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}
}
