package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sendico/apiserver/internal/services"
)

// BlogHandler provides HTTP handlers for blogs.
type BlogHandler struct {
	blogs   *services.BlogService
	uploads uploadRules
}

func NewBlogHandler(blogs *services.BlogService, maxFileBytes int64) *BlogHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = DefaultMaxFileBytes
	}
	return &BlogHandler{
		blogs:   blogs,
		uploads: uploadRules{field: "picture", maxFiles: 1, maxBytes: maxFileBytes},
	}
}

// BlogRouter registers blog routes on the given router.
func BlogRouter(
	r chi.Router,
	blogs *services.BlogService,
	authMiddleware func(http.Handler) http.Handler,
	maxFileBytes int64,
) {
	handler := NewBlogHandler(blogs, maxFileBytes)

	r.Get("/", handler.Search)
	r.With(authMiddleware).Post("/", handler.Create)
	r.Route("/{blogID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(authMiddleware).Patch("/", handler.Update)
		r.With(authMiddleware).Delete("/", handler.Delete)
	})
}

func (h *BlogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := parseSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	blogs, paging, err := h.blogs.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	items := make([]blogResponse, 0, len(blogs))
	for _, blog := range blogs {
		items = append(items, toBlogResponse(blog))
	}
	writeJSON(w, http.StatusOK, Response{Data: items, Paging: &paging})
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(r.Context(), chi.URLParam(r, "blogID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toBlogResponse(blog))
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	blog, err := h.blogs.Create(r.Context(), id, form.input(), firstFile(files))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toBlogResponse(blog))
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	blog, err := h.blogs.Update(r.Context(), id, chi.URLParam(r, "blogID"), form.patch(), firstFile(files))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toBlogResponse(blog))
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.blogs.Delete(r.Context(), id, chi.URLParam(r, "blogID")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "OK")
}

func firstFile(files []services.File) *services.File {
	if len(files) == 0 {
		return nil
	}
	return &files[0]
}
