package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sendico/apiserver/internal/auth"
	"github.com/sendico/apiserver/internal/logger"
	"github.com/sendico/apiserver/internal/services"
)

const maxJSONBodyBytes = 1 << 20

type contextKey string

const contextIdentityKey contextKey = "identity"

// Response is the envelope of every API reply. Errors is either a message
// or a map of field names to messages.
type Response struct {
	Data    any              `json:"data,omitempty"`
	Errors  any              `json:"errors,omitempty"`
	Paging  *services.Paging `json:"paging,omitempty"`
	Message string           `json:"message,omitempty"`
}

func withIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, contextIdentityKey, id)
}

func identityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(contextIdentityKey).(auth.Identity)
	if !ok || id.Username == "" {
		return auth.Identity{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Errors: message})
}

// writeServiceError maps a service failure onto a status code. Unclassified
// errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		if len(svcErr.Fields) > 0 {
			writeJSON(w, http.StatusBadRequest, Response{Errors: svcErr.Fields})
			return
		}
		writeError(w, http.StatusBadRequest, svcErr.Message)
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, svcErr.Message)
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, svcErr.Message)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, svcErr.Message)
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, svcErr.Message)
	case errors.Is(err, services.ErrUpload):
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
	default:
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	return json.NewDecoder(body).Decode(dst)
}

// parseSearch reads title, page and size. Missing numbers stay zero so the
// service applies its defaults.
func parseSearch(r *http.Request) (services.SearchQuery, error) {
	query := services.SearchQuery{Title: strings.TrimSpace(r.URL.Query().Get("title"))}
	var err error
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		query.Page, err = strconv.Atoi(raw)
		if err != nil || query.Page < 1 {
			return services.SearchQuery{}, errors.New("invalid page")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		query.Size, err = strconv.Atoi(raw)
		if err != nil || query.Size < 1 || query.Size > services.MaxPageSize {
			return services.SearchQuery{}, errors.New("invalid size")
		}
	}
	return query, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}
