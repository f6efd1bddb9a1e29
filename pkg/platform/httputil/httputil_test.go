package httputil

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "garita/pkg/domain-errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 201, map[string]string{"id": "abc"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "abc", body["id"])
}

func TestWriteError_ReasonWinsOverCode(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.NewReason(dErrors.CodeConflict, "visita_ya_adentro", "already inside"))

	assert.Equal(t, 409, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "visita_ya_adentro", body["error"])
	assert.Equal(t, "already inside", body["error_description"])
}

func TestWriteError_CodeWhenNoReason(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeNotFound, "no such event"))

	assert.Equal(t, 404, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "not_found", body["error"])
}

func TestWriteError_WrappedDomainErrorSurvives(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("handler: %w", dErrors.NewReason(dErrors.CodeForbidden, "prohibido", "active ban"))
	WriteError(rec, wrapped)

	assert.Equal(t, 403, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "prohibido", body["error"])
}

func TestWriteError_InternalHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("pq: connection refused"))

	assert.Equal(t, 500, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_error", body["error"])
	assert.Empty(t, body["error_description"])
}
