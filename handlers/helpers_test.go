package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MichaelPain/FutHaxball-sub001/errs"
	"github.com/MichaelPain/FutHaxball-sub001/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("get: %w", services.ErrTournamentNotFound), http.StatusNotFound},
		{fmt.Errorf("standings: %w", services.ErrStageNotFound), http.StatusNotFound},
		{services.ErrVersionConflict, http.StatusConflict},
		{services.ErrTournamentExists, http.StatusConflict},
		{fmt.Errorf("submit result: %w", errs.Validation("scores must be non-negative")), http.StatusUnprocessableEntity},
		{errs.State("tournament is draft"), http.StatusConflict},
		{errs.NotFound("match %q not found", "m9"), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		mapServiceErrorToHTTP(rec, req, tc.err)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestServerErrorsHideDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestReadJSON(t *testing.T) {
	read := func(body string) error {
		var dst struct {
			Name string `json:"name"`
		}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return readJSON(httptest.NewRecorder(), req, &dst)
	}

	assert.NoError(t, read(`{"name":"cup"}`))
	assert.EqualError(t, read(``), "body must not be empty")
	assert.EqualError(t, read(`{"name":"cup"}{}`), "body must only contain a single JSON value")
	assert.EqualError(t, read(`{"name":1}`), `body contains incorrect JSON type for field "name"`)
	assert.EqualError(t, read(`{"nom":"cup"}`), `body contains unknown key "nom"`)
	assert.Error(t, read(`{"name":`))
}
