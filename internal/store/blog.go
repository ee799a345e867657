package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sendico/apiserver/types"
)

// BlogRepository handles persistence for blogs.
type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) List(ctx context.Context, title string, offset, limit int) ([]types.Blog, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}
	pattern := likePattern(title)

	const countQuery = `SELECT COUNT(1) FROM blogs WHERE title ILIKE $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, title, description, date, picture, owner, created_at, updated_at
		FROM blogs
		WHERE title ILIKE $1
		ORDER BY created_at DESC, id
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	blogs := make([]types.Blog, 0, limit)
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}

func (r *BlogRepository) Get(ctx context.Context, id string) (types.Blog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return types.Blog{}, ErrNotFound
	}

	const query = `
		SELECT id, title, description, date, picture, owner, created_at, updated_at
		FROM blogs
		WHERE id = $1`
	blog, err := scanBlog(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Blog{}, ErrNotFound
		}
		return types.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) Create(ctx context.Context, blog types.Blog) (types.Blog, error) {
	now := time.Now()
	blog.ID = uuid.NewString()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	const query = `
		INSERT INTO blogs (id, title, description, date, picture, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		blog.ID,
		blog.Title,
		blog.Description,
		blog.Date,
		blog.Picture,
		blog.Owner,
		blog.CreatedAt,
		blog.UpdatedAt,
	); err != nil {
		return types.Blog{}, err
	}
	return blog, nil
}

func (r *BlogRepository) Update(ctx context.Context, blog types.Blog) (types.Blog, error) {
	blog.UpdatedAt = time.Now()

	const query = `
		UPDATE blogs
		SET title = $1,
			description = $2,
			date = $3,
			picture = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		blog.Title,
		blog.Description,
		blog.Date,
		blog.Picture,
		blog.UpdatedAt,
		blog.ID,
	)
	if err != nil {
		return types.Blog{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Blog{}, err
	}
	if affected == 0 {
		return types.Blog{}, ErrNotFound
	}
	return blog, nil
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM blogs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MediaByOwner returns the non-empty picture URLs of blogs owned by owner.
func (r *BlogRepository) MediaByOwner(ctx context.Context, owner string) ([]string, error) {
	const query = `SELECT picture FROM blogs WHERE owner = $1 AND picture <> ''`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []string
	for rows.Next() {
		var picture string
		if err := rows.Scan(&picture); err != nil {
			return nil, err
		}
		media = append(media, picture)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return media, nil
}

func scanBlog(row rowScanner) (types.Blog, error) {
	var blog types.Blog
	if err := row.Scan(
		&blog.ID,
		&blog.Title,
		&blog.Description,
		&blog.Date,
		&blog.Picture,
		&blog.Owner,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	); err != nil {
		return types.Blog{}, err
	}
	return blog, nil
}
