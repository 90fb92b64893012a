package responses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "world", data["hello"])
}

func TestWriteSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWriteErrorMapsCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantMsg:    "quantity must be a positive integer",
		},
		{
			name:       "not found",
			err:        pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "menu item not found",
		},
		{
			name:       "precondition",
			err:        pkgerrors.New(pkgerrors.CodePrecondition, "your cart is empty, add something before checking out"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "PRECONDITION_FAILED",
			wantMsg:    "your cart is empty, add something before checking out",
		},
		{
			name:       "dependency",
			err:        pkgerrors.New(pkgerrors.CodeDependency, "menu is not available right now"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "DEPENDENCY_ERROR",
			wantMsg:    "menu is not available right now",
		},
		{
			name:       "internal hides message",
			err:        pkgerrors.New(pkgerrors.CodeInternal, "nil pointer somewhere"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
		{
			name:       "untyped wrapped as internal",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var envelope types.ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Equal(t, tt.wantMsg, envelope.Error.Message)
		})
	}
}

func TestWriteErrorIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "size required").
		WithDetails(map[string]any{"available_sizes": []string{"10 Count", "24 Count"}})
	WriteError(context.Background(), nil, rec, err)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	details, ok := envelope.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "available_sizes")
}

func TestWriteErrorNilError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
