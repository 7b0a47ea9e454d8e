// Package storage exposes the file intake engine over HTTP: multipart
// upload, streamed retrieval with a resolved content type, and deletion
// by generated name.
package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shelfstream/shelfstream/core"
	"github.com/shelfstream/shelfstream/pkg/logger"
	"github.com/shelfstream/shelfstream/pkg/mimetype"
	"github.com/shelfstream/shelfstream/pkg/storage"
)

// Route is the mount path of this module, used to build public file URLs.
const Route = "/api/storage"

// FileURL builds the public URL for a stored file from the incoming
// request's scheme and host.
func FileURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s/%s", scheme, r.Host, Route, name)
}

// Handler serves the upload, retrieve and delete endpoints.
type Handler struct {
	store storage.Store
	log   *slog.Logger
}

// HandlerOption configures the Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger supplies a logger. Defaults to slog.Default().
func WithHandlerLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates the storage HTTP handler on the given store.
func NewHandler(store storage.Store, opts ...HandlerOption) *Handler {
	h := &Handler{store: store, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the module's routes, ready to mount at Route.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.upload)
	r.Get("/{fileName}", h.retrieve)
	r.Delete("/{fileName}", h.delete)
	return r
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		core.JSONError(w, core.ErrBadRequest.WithMessage("no file in the request"))
		return
	}
	defer func() { _ = file.Close() }()

	name, err := h.store.Save(r.Context(), file, header.Size, filepath.Ext(header.Filename))
	if err != nil {
		core.JSONError(w, mapStorageError(err))
		return
	}

	core.JSON(w, http.StatusOK, map[string]string{"url": FileURL(r, name)})
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")

	rc, size, err := h.store.Load(r.Context(), name)
	if err != nil {
		core.JSONError(w, mapStorageError(err))
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", mimetype.Resolve(filepath.Ext(name)))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone already; all we can do is log.
		h.log.ErrorContext(r.Context(), "failed to stream file",
			logger.FileName(name), logger.Error(err))
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "fileName")

	ok, err := h.store.Delete(r.Context(), name)
	if err != nil {
		core.JSONError(w, mapStorageError(err))
		return
	}
	if !ok {
		core.JSONError(w, core.ErrNotFound.WithMessage("file not found with name: "+name))
		return
	}
	core.NoContent(w)
}

// mapStorageError translates store sentinels into client-facing outcomes.
// Invalid names map to not-found: such a name cannot denote a stored file.
func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return core.ErrRequestEntityTooLarge.WithMessage(err.Error())
	case errors.Is(err, storage.ErrExtensionNotAllowed):
		return core.ErrUnsupportedMediaType.WithMessage(err.Error())
	case errors.Is(err, storage.ErrFileNotFound), errors.Is(err, storage.ErrInvalidName):
		return core.ErrNotFound.WithMessage("file not found")
	default:
		return err
	}
}
