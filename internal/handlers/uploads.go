package handlers

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sendico/apiserver/internal/services"
)

const (
	// DefaultMaxFileBytes caps a single uploaded image.
	DefaultMaxFileBytes = 10 << 20
	maxFormValueBytes   = 1 << 20
)

var (
	errTooLarge = errors.New("file too large")

	allowedImageTypes      = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	allowedImageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
)

// uploadRules describes the file part accepted by one endpoint.
type uploadRules struct {
	field    string
	maxFiles int
	maxBytes int64
}

// contentForm holds the text fields of a posting or blog request. A nil
// field was not sent.
type contentForm struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

func (f contentForm) input() services.ContentInput {
	return services.ContentInput{
		Title:       deref(f.Title),
		Description: deref(f.Description),
		Date:        deref(f.Date),
	}
}

func (f contentForm) patch() services.ContentPatch {
	return services.ContentPatch{Title: f.Title, Description: f.Description, Date: f.Date}
}

// parseContentRequest accepts a multipart form with optional image files,
// or a JSON body without files.
func parseContentRequest(w http.ResponseWriter, r *http.Request, rules uploadRules) (contentForm, []services.File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var form contentForm
		if err := decodeJSON(w, r, &form); err != nil {
			return contentForm{}, nil, errors.New("invalid request body")
		}
		return form, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(rules.maxFiles)*rules.maxBytes+maxFormValueBytes)
	if err := r.ParseMultipartForm(maxFormValueBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return contentForm{}, nil, errors.New("request body too large")
		}
		return contentForm{}, nil, errors.New("invalid multipart form")
	}
	// Parts over the memory budget are spooled to temp files; net/http only
	// removes those for the form of its own request value, not this copy.
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var form contentForm
	values := r.MultipartForm.Value
	form.Title = formValue(values, "title")
	form.Description = formValue(values, "description")
	form.Date = formValue(values, "date")

	files, err := readImages(r.MultipartForm, rules)
	if err != nil {
		return contentForm{}, nil, err
	}
	return form, files, nil
}

// readImages validates and reads the files of rules.field. The count is
// checked before anything is read.
func readImages(form *multipart.Form, rules uploadRules) ([]services.File, error) {
	if form == nil {
		return nil, nil
	}
	for field := range form.File {
		if field != rules.field {
			return nil, fmt.Errorf("unexpected file field %q", field)
		}
	}

	headers := form.File[rules.field]
	if len(headers) > rules.maxFiles {
		return nil, fmt.Errorf("too many files: at most %d allowed in %q", rules.maxFiles, rules.field)
	}

	files := make([]services.File, 0, len(headers))
	for _, header := range headers {
		file, err := readImage(header, rules.maxBytes)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readImage(header *multipart.FileHeader, maxBytes int64) (services.File, error) {
	declared, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil || !isAllowedImageType(declared) {
		return services.File{}, errors.New("invalid file type: only JPEG, PNG, GIF and WebP images are allowed")
	}
	if !allowedImageExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		return services.File{}, errors.New("invalid file extension: only .jpg, .jpeg, .png, .gif and .webp are allowed")
	}
	if header.Size > maxBytes {
		return services.File{}, fmt.Errorf("file too large: maximum size is %d bytes", maxBytes)
	}

	file, err := header.Open()
	if err != nil {
		return services.File{}, fmt.Errorf("failed to read upload: %w", err)
	}
	data, err := readFileLimited(file, maxBytes)
	_ = file.Close()
	if errors.Is(err, errTooLarge) {
		return services.File{}, fmt.Errorf("file too large: maximum size is %d bytes", maxBytes)
	}
	if err != nil {
		return services.File{}, err
	}

	detected := mimetype.Detect(data)
	if !isAllowedImageType(detected.String()) {
		return services.File{}, errors.New("file content is not a supported image")
	}

	return services.File{
		Name:        header.Filename,
		ContentType: declared,
		Data:        data,
	}, nil
}

func isAllowedImageType(mediaType string) bool {
	for _, allowed := range allowedImageTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}

func formValue(values map[string][]string, key string) *string {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	return &v[0]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
