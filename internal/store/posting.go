package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sendico/apiserver/types"
)

// PostingRepository handles persistence for postings.
type PostingRepository struct {
	db *sql.DB
}

func NewPostingRepository(db *sql.DB) *PostingRepository {
	return &PostingRepository{db: db}
}

// List returns postings whose title contains title (case-insensitive, all
// postings when empty), newest first, along with the total match count.
func (r *PostingRepository) List(ctx context.Context, title string, offset, limit int) ([]types.Posting, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}
	pattern := likePattern(title)

	const countQuery = `SELECT COUNT(1) FROM postings WHERE title ILIKE $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, title, description, date, pictures, owner, created_at, updated_at
		FROM postings
		WHERE title ILIKE $1
		ORDER BY created_at DESC, id
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, pattern, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	postings := make([]types.Posting, 0, limit)
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, 0, err
		}
		postings = append(postings, posting)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return postings, total, nil
}

func (r *PostingRepository) Get(ctx context.Context, id string) (types.Posting, error) {
	if _, err := uuid.Parse(id); err != nil {
		return types.Posting{}, ErrNotFound
	}

	const query = `
		SELECT id, title, description, date, pictures, owner, created_at, updated_at
		FROM postings
		WHERE id = $1`
	posting, err := scanPosting(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Posting{}, ErrNotFound
		}
		return types.Posting{}, err
	}
	return posting, nil
}

func (r *PostingRepository) Create(ctx context.Context, posting types.Posting) (types.Posting, error) {
	now := time.Now()
	posting.ID = uuid.NewString()
	posting.CreatedAt = now
	posting.UpdatedAt = now
	if posting.Pictures == nil {
		posting.Pictures = []string{}
	}

	picturesJSON, err := json.Marshal(posting.Pictures)
	if err != nil {
		return types.Posting{}, err
	}

	const query = `
		INSERT INTO postings (id, title, description, date, pictures, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		posting.ID,
		posting.Title,
		posting.Description,
		posting.Date,
		picturesJSON,
		posting.Owner,
		posting.CreatedAt,
		posting.UpdatedAt,
	); err != nil {
		return types.Posting{}, err
	}

	return posting, nil
}

func (r *PostingRepository) Update(ctx context.Context, posting types.Posting) (types.Posting, error) {
	posting.UpdatedAt = time.Now()
	if posting.Pictures == nil {
		posting.Pictures = []string{}
	}

	picturesJSON, err := json.Marshal(posting.Pictures)
	if err != nil {
		return types.Posting{}, err
	}

	const query = `
		UPDATE postings
		SET title = $1,
			description = $2,
			date = $3,
			pictures = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		posting.Title,
		posting.Description,
		posting.Date,
		picturesJSON,
		posting.UpdatedAt,
		posting.ID,
	)
	if err != nil {
		return types.Posting{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Posting{}, err
	}
	if affected == 0 {
		return types.Posting{}, ErrNotFound
	}

	return posting, nil
}

func (r *PostingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM postings WHERE id = $1`
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

// MediaByOwner returns every picture URL referenced by postings of owner.
func (r *PostingRepository) MediaByOwner(ctx context.Context, owner string) ([]string, error) {
	const query = `SELECT pictures FROM postings WHERE owner = $1`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []string
	for rows.Next() {
		var picturesJSON []byte
		if err := rows.Scan(&picturesJSON); err != nil {
			return nil, err
		}
		pictures, err := decodePictures(picturesJSON)
		if err != nil {
			return nil, err
		}
		media = append(media, pictures...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return media, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (types.Posting, error) {
	var posting types.Posting
	var picturesJSON []byte
	if err := row.Scan(
		&posting.ID,
		&posting.Title,
		&posting.Description,
		&posting.Date,
		&picturesJSON,
		&posting.Owner,
		&posting.CreatedAt,
		&posting.UpdatedAt,
	); err != nil {
		return types.Posting{}, err
	}
	pictures, err := decodePictures(picturesJSON)
	if err != nil {
		return types.Posting{}, fmt.Errorf("posting %s: %w", posting.ID, err)
	}
	posting.Pictures = pictures
	return posting, nil
}

// decodePictures parses the pictures column. A corrupt value is an error so
// that an update never overwrites the URLs it could not read.
func decodePictures(raw []byte) ([]string, error) {
	pictures := []string{}
	if len(raw) == 0 {
		return pictures, nil
	}
	if err := json.Unmarshal(raw, &pictures); err != nil {
		return nil, fmt.Errorf("decode pictures: %w", err)
	}
	if pictures == nil {
		pictures = []string{}
	}
	return pictures, nil
}

// likePattern builds an ILIKE "contains" pattern with wildcards in term escaped.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(term)) + "%"
}
