package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{common.ErrDuplicateEmail, http.StatusConflict, common.ErrDuplicateEmail.Error()},
		{common.ErrDuplicateUsername, http.StatusConflict, common.ErrDuplicateUsername.Error()},
		{common.ErrInvalidCredentials, http.StatusUnauthorized, common.ErrInvalidCredentials.Error()},
		{common.ErrNotConfirmed, http.StatusUnauthorized, common.ErrNotConfirmed.Error()},
		{fmt.Errorf("%w: token expired", common.ErrorUnauthorized), http.StatusUnauthorized, common.ErrorUnauthorized.Error()},
		{common.ErrVerification, http.StatusBadRequest, common.ErrVerification.Error()},
		{common.ErrEmailNotConfirmed, http.StatusBadRequest, common.ErrEmailNotConfirmed.Error()},
		{common.ErrInvalidOrExpiredToken, http.StatusBadRequest, common.ErrInvalidOrExpiredToken.Error()},
		{common.ErrDuplicateContact, http.StatusBadRequest, common.ErrDuplicateContact.Error()},
		{common.ErrUserNotFound, http.StatusNotFound, common.ErrUserNotFound.Error()},
		{common.ErrContactNotFound, http.StatusNotFound, common.ErrContactNotFound.Error()},
		{common.ErrForbidden, http.StatusForbidden, common.ErrForbidden.Error()},
		{fmt.Errorf("%w: days must be >= 1", common.ErrValidation), http.StatusUnprocessableEntity, "validation error: days must be >= 1"},
		{errUnprocessable("bad body", nil), http.StatusUnprocessableEntity, "bad body"},
		{fmt.Errorf("db error: %w", errors.New("connection refused")), http.StatusInternalServerError, msgInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			he := toHTTPError(tt.err)
			assert.Equal(t, tt.code, he.Code)
			assert.Equal(t, tt.msg, he.Message)
		})
	}
}

func TestHandle_WritesDetail(t *testing.T) {
	s := &Server{logger: logging.Nop()}

	rec := httptest.NewRecorder()
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("secret internals")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = httptest.NewRecorder()
	s.handle(func(w http.ResponseWriter, r *http.Request) error {
		respondJSON(w, http.StatusOK, map[string]int{"n": 1})
		return errors.New("late failure")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code, "a written response is left alone")
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, ok := bearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestHealthzMetricsAndNotFound(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = e.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not Found", detailOf(t, body))

	resp, _ = e.do(t, http.MethodDelete, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.True(t, strings.Contains(text, `contactkeeper_http_requests_total{method="GET",route="/healthz",status="200"}`), text)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil, nil, nil, nil, nil, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewServer("127.0.0.1:99999", nil, nil, nil, nil, nil, logging.Nop())
	require.Error(t, s.Run(context.Background()))
}
