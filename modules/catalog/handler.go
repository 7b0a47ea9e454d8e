package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shelfstream/shelfstream/core"
	storagemod "github.com/shelfstream/shelfstream/modules/storage"
	"github.com/shelfstream/shelfstream/pkg/storage"
)

// Route is the mount path of the catalog module.
const Route = "/api/books"

// Handler serves the catalog CRUD endpoints plus the cover image patch.
type Handler struct {
	svc *Service
}

// NewHandler creates the catalog HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Router returns the module's routes, ready to mount at Route.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id:[0-9a-fA-F]{24}}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Patch("/image", h.patchImage)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.List(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}
	if books == nil {
		books = []Book{}
	}
	core.JSON(w, http.StatusOK, books)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, mapCatalogError(err))
		return
	}
	core.JSON(w, http.StatusOK, book)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	book, err := decodeBook(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	created, err := h.svc.Create(r.Context(), book)
	if err != nil {
		core.JSONError(w, mapCatalogError(err))
		return
	}
	core.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	book, err := decodeBook(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), book)
	if err != nil {
		core.JSONError(w, mapCatalogError(err))
		return
	}
	core.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.JSONError(w, mapCatalogError(err))
		return
	}
	core.JSON(w, http.StatusOK, deleted)
}

func (h *Handler) patchImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		core.JSONError(w, core.ErrBadRequest.WithMessage("no file in the request"))
		return
	}
	defer func() { _ = file.Close() }()

	updated, err := h.svc.SetImage(
		r.Context(),
		chi.URLParam(r, "id"),
		file, header.Size, filepath.Ext(header.Filename),
		func(name string) string { return storagemod.FileURL(r, name) },
	)
	if err != nil {
		core.JSONError(w, mapCatalogError(err))
		return
	}
	core.JSON(w, http.StatusOK, updated)
}

func decodeBook(r *http.Request) (Book, error) {
	var book Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		return Book{}, core.ErrBadRequest.WithMessage("invalid request body")
	}
	if strings.TrimSpace(book.Name) == "" {
		return Book{}, core.ErrUnprocessableEntity.WithMessage("book name is required")
	}
	if book.Price < 0 {
		return Book{}, core.ErrUnprocessableEntity.WithMessage("book price must not be negative")
	}
	return book, nil
}

// mapCatalogError translates service sentinels into client-facing outcomes.
func mapCatalogError(err error) error {
	switch {
	case errors.Is(err, ErrBookNotFound):
		return core.ErrNotFound.WithMessage("book not found")
	case errors.Is(err, ErrInvalidID):
		return core.ErrBadRequest.WithMessage("invalid book id")
	case errors.Is(err, storage.ErrFileTooLarge):
		return core.ErrRequestEntityTooLarge.WithMessage(err.Error())
	case errors.Is(err, storage.ErrExtensionNotAllowed):
		return core.ErrUnsupportedMediaType.WithMessage(err.Error())
	default:
		return err
	}
}
