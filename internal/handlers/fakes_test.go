package handlers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sendico/apiserver/internal/store"
	"github.com/sendico/apiserver/types"
)

type userRepo struct {
	mu    sync.Mutex
	users map[string]types.User
}

func (m *userRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *userRepo) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (m *userRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	m.users[user.Username] = user
	return user, nil
}

func (m *userRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Username] = user
	return user, nil
}

func (m *userRepo) Delete(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

type postingRepo struct {
	mu       sync.Mutex
	seq      int
	postings map[string]types.Posting
}

func (m *postingRepo) List(ctx context.Context, title string, offset, limit int) ([]types.Posting, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []types.Posting
	for _, p := range m.postings {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(title)) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	end := min(offset+limit, total)
	offset = min(offset, total)
	return matched[offset:end], total, nil
}

func (m *postingRepo) Get(ctx context.Context, id string) (types.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.postings[id]
	if !ok {
		return types.Posting{}, store.ErrNotFound
	}
	return p, nil
}

func (m *postingRepo) Create(ctx context.Context, p types.Posting) (types.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("p%d", m.seq)
	p.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
	p.UpdatedAt = p.CreatedAt
	m.postings[p.ID] = p
	return p, nil
}

func (m *postingRepo) Update(ctx context.Context, p types.Posting) (types.Posting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings[p.ID] = p
	return p, nil
}

func (m *postingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.postings, id)
	return nil
}

func (m *postingRepo) MediaByOwner(ctx context.Context, owner string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var urls []string
	for _, p := range m.postings {
		if p.Owner == owner {
			urls = append(urls, p.Pictures...)
		}
	}
	return urls, nil
}

type blogRepo struct {
	mu    sync.Mutex
	seq   int
	blogs map[string]types.Blog
}

func (m *blogRepo) List(ctx context.Context, title string, offset, limit int) ([]types.Blog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blogs := make([]types.Blog, 0, len(m.blogs))
	for _, b := range m.blogs {
		blogs = append(blogs, b)
	}
	return blogs, len(blogs), nil
}

func (m *blogRepo) Get(ctx context.Context, id string) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blogs[id]
	if !ok {
		return types.Blog{}, store.ErrNotFound
	}
	return b, nil
}

func (m *blogRepo) Create(ctx context.Context, b types.Blog) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	b.ID = fmt.Sprintf("b%d", m.seq)
	m.blogs[b.ID] = b
	return b, nil
}

func (m *blogRepo) Update(ctx context.Context, b types.Blog) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blogs[b.ID] = b
	return b, nil
}

func (m *blogRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blogs, id)
	return nil
}

// countingBackend is a storage backend that keeps object keys in memory.
type countingBackend struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
}

func (c *countingBackend) EnsureBucket(ctx context.Context) error { return nil }

func (c *countingBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts = append(c.puts, key)
	return nil
}

func (c *countingBackend) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, key)
	return nil
}

func (c *countingBackend) PublicURL(key string) string { return "https://cdn.test/" + key }

func (c *countingBackend) Name() string { return "counting" }

func (c *countingBackend) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.puts)
}
