package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sendico/apiserver/internal/services"
	"github.com/sendico/apiserver/types"
)

// PostingHandler provides HTTP handlers for postings.
type PostingHandler struct {
	postings *services.PostingService
	uploads  uploadRules
}

func NewPostingHandler(postings *services.PostingService, maxFileBytes int64) *PostingHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &PostingHandler{
		postings: postings,
		uploads:  uploadRules{field: "pictures", maxFiles: types.MaxPostingPictures, maxBytes: maxFileBytes},
	}
}

// PostingRouter registers posting routes on the given router.
func PostingRouter(
	r chi.Router,
	postings *services.PostingService,
	authMiddleware func(http.Handler) http.Handler,
	maxFileBytes int64,
) {
	handler := NewPostingHandler(postings, maxFileBytes)

	r.Get("/", handler.Search)
	r.With(authMiddleware).Post("/", handler.Create)
	r.Route("/{postingID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(authMiddleware).Patch("/", handler.Update)
		r.With(authMiddleware).Delete("/", handler.Delete)
	})
}

func (h *PostingHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	postings, paging, err := h.postings.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]postingResponse, 0, len(postings))
	for _, posting := range postings {
		items = append(items, toPostingResponse(posting))
	}
	writeJSON(w, http.StatusOK, Response{Data: items, Paging: &paging})
}

func (h *PostingHandler) Get(w http.ResponseWriter, r *http.Request) {
	posting, err := h.postings.Get(r.Context(), chi.URLParam(r, "postingID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPostingResponse(posting))
}

func (h *PostingHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	form, files, err := parseContentRequest(w, r, h.uploads)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posting, err := h.postings.Create(r.Context(), id, form.input(), files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toPostingResponse(posting))
}

func (h *PostingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	form, files, err := parseContentRequest(w, r, h.uploads)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posting, err := h.postings.Update(r.Context(), id, chi.URLParam(r, "postingID"), form.patch(), files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPostingResponse(posting))
}

func (h *PostingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.postings.Delete(r.Context(), id, chi.URLParam(r, "postingID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "OK")
}
