package services

import (
	"context"

	"github.com/sendico/apiserver/internal/storage"
)

// MediaStore is the image storage used by postings, blogs and user
// deletion. *storage.Storage satisfies it.
type MediaStore interface {
	Upload(ctx context.Context, data []byte, name, mimeType string) (storage.UploadResult, error)
	DeleteAll(ctx context.Context, identifiers []string)
}

// File is an uploaded image that has already passed boundary checks.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// uploadAll stores files in order. On the first failure the blobs already
// stored are removed and an upload error is returned.
func uploadAll(ctx context.Context, media MediaStore, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		res, err := media.Upload(ctx, file.Data, file.Name, file.ContentType)
		if err != nil {
			media.DeleteAll(ctx, urls)
			return nil, uploadError(err)
		}
		urls = append(urls, res.URL)
	}
	return urls, nil
}
