package catalog_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/shelfstream/shelfstream/modules/catalog"
)

func newCatalogServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()

	svc, repo, _, _ := newTestService()
	r := chi.NewRouter()
	r.Mount(catalog.Route, catalog.NewHandler(svc).Router())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func createBook(t *testing.T, srv *httptest.Server, body string) catalog.Book {
	t.Helper()

	resp, err := http.Post(srv.URL+catalog.Route+"/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var book catalog.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
	return book
}

func TestHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates and returns the book", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		book := createBook(t, srv, `{"name":"Dune","price":9.99,"category":"sci-fi","author":"Herbert"}`)
		assert.False(t, book.ID.IsZero())
		assert.Equal(t, "Dune", book.Name)
		assert.NotNil(t, book.CreatedAt)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp, err := http.Post(srv.URL+catalog.Route+"/", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp, err := http.Post(srv.URL+catalog.Route+"/", "application/json", strings.NewReader(`{"name":"  "}`))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp, err := http.Post(srv.URL+catalog.Route+"/", "application/json", strings.NewReader(`{"name":"Dune","price":-1}`))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("empty catalog is an empty array", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp, err := http.Get(srv.URL + catalog.Route + "/")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var books []catalog.Book
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("returns created books", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		createBook(t, srv, `{"name":"Dune"}`)
		createBook(t, srv, `{"name":"Foundation"}`)

		resp, err := http.Get(srv.URL + catalog.Route + "/")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		var books []catalog.Book
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&books))
		assert.Len(t, books, 2)
	})
}

func TestHandler_Get(t *testing.T) {
	t.Parallel()

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp, err := http.Get(srv.URL + catalog.Route + "/" + bson.NewObjectID().Hex())
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id misses the route", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp, err := http.Get(srv.URL + catalog.Route + "/not-hex")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("returns the book", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		created := createBook(t, srv, `{"name":"Dune"}`)

		resp, err := http.Get(srv.URL + catalog.Route + "/" + created.ID.Hex())
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var book catalog.Book
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
		assert.Equal(t, created.ID, book.ID)
	})
}

func TestHandler_Update(t *testing.T) {
	t.Parallel()

	srv, _ := newCatalogServer(t)
	created := createBook(t, srv, `{"name":"Dune","price":9.99}`)

	req, err := http.NewRequest(http.MethodPut, srv.URL+catalog.Route+"/"+created.ID.Hex(),
		strings.NewReader(`{"name":"Dune Messiah","price":12.5}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var book catalog.Book
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
	assert.Equal(t, "Dune Messiah", book.Name)
	assert.InDelta(t, 12.5, book.Price, 0.001)
}

func TestHandler_Delete(t *testing.T) {
	t.Parallel()

	t.Run("returns the deleted book", func(t *testing.T) {
		t.Parallel()

		srv, repo := newCatalogServer(t)
		created := createBook(t, srv, `{"name":"Dune"}`)

		req, err := http.NewRequest(http.MethodDelete, srv.URL+catalog.Route+"/"+created.ID.Hex(), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var book catalog.Book
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
		assert.Equal(t, created.ID, book.ID)
		assert.Empty(t, repo.books)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		req, err := http.NewRequest(http.MethodDelete, srv.URL+catalog.Route+"/"+bson.NewObjectID().Hex(), nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandler_PatchImage(t *testing.T) {
	t.Parallel()

	patchImage := func(t *testing.T, srv *httptest.Server, id, field, filename string) *http.Response {
		t.Helper()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("image bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPatch, srv.URL+catalog.Route+"/"+id+"/image", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	t.Run("persists the image url", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		created := createBook(t, srv, `{"name":"Dune"}`)

		resp := patchImage(t, srv, created.ID.Hex(), "file", "cover.png")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var book catalog.Book
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&book))
		require.NotNil(t, book.Image)
		assert.Contains(t, *book.Image, "/api/storage/")
		assert.True(t, strings.HasSuffix(*book.Image, ".png"))
	})

	t.Run("unknown book", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		resp := patchImage(t, srv, bson.NewObjectID().Hex(), "file", "cover.png")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing file field", func(t *testing.T) {
		t.Parallel()

		srv, _ := newCatalogServer(t)
		created := createBook(t, srv, `{"name":"Dune"}`)
		resp := patchImage(t, srv, created.ID.Hex(), "document", "cover.png")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
