package core_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstream/shelfstream/core"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.JSON(rec, http.StatusCreated, map[string]string{"name": "dune"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "dune", body["name"])
}

func TestNoContent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	core.NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorDetail {
		t.Helper()
		var body struct {
			Error core.ErrorDetail `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.Error
	}

	t.Run("HTTPError renders its own status and code", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		core.JSONError(rec, core.ErrNotFound.WithMessage("book not found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		detail := decode(t, rec)
		assert.Equal(t, "not_found", detail.Code)
		assert.Equal(t, "book not found", detail.Message)
	})

	t.Run("wrapped HTTPError is unwrapped", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		core.JSONError(rec, fmt.Errorf("handler: %w", core.ErrBadRequest))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown errors become a generic server fault", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		core.JSONError(rec, errors.New("disk exploded: /var/secret"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		detail := decode(t, rec)
		assert.Equal(t, "internal_server_error", detail.Code)
		assert.NotContains(t, detail.Message, "secret", "internal detail must stay off the wire")
	})
}
