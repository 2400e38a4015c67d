package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"cirrus/internal/domain"
)

func TestHandleError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Message: "bad name"}, http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", &domain.ForbiddenError{Message: "not yours"}, http.StatusForbidden},
		{"not found", &domain.NotFoundError{Message: "node n1 not found"}, http.StatusNotFound},
		{"conflict", &domain.ConflictError{Message: "cycle"}, http.StatusConflict},
		{"io", &domain.IOError{Message: "blob store down"}, http.StatusBadGateway},
		{"wrapped not found", errors.Join(errors.New("context"), domain.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandleError_InternalDetailIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, errors.New("pq: secret connection string"))
	assert.NotContains(t, rec.Body.String(), "secret")
}
