package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/auth"
	"github.com/dmitrijs2005/contactkeeper/internal/server/avatar"
	"github.com/dmitrijs2005/contactkeeper/internal/server/config"
	"github.com/dmitrijs2005/contactkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contactkeeper/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mailbox struct {
	mu     sync.Mutex
	tokens map[string][]string
}

func (m *mailbox) put(to, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string][]string)
	}
	m.tokens[to] = append(m.tokens[to], token)
}

func (m *mailbox) SendConfirmation(ctx context.Context, to, username, host, token string) {
	m.put(to, token)
}

func (m *mailbox) SendPasswordReset(ctx context.Context, to, username, host, token string) {
	m.put(to, token)
}

func (m *mailbox) last(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.tokens[to], "no mail for %s", to)
	return m.tokens[to][len(m.tokens[to])-1]
}

type stubUploader struct{}

func (stubUploader) Upload(ctx context.Context, username string, img avatar.Image) (string, error) {
	return "http://cdn.local/" + username + "/" + img.Filename, nil
}

type testEnv struct {
	srv      *httptest.Server
	mail     *mailbox
	users    *services.UserService
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "rest-test-secret"

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	rm := repomanager.NewInMemoryRepositoryManager(memory.NewStore(nil))
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}
	tokens := auth.NewTokenService([]byte(cfg.SecretKey), nil)
	mb := &mailbox{}

	as := services.NewAuthService(rm, tokens, hasher, mb, cfg, logging.Nop(), m)
	cs := services.NewContactService(rm, logging.Nop())
	us := services.NewUserService(rm, hasher, stubUploader{}, logging.Nop())

	s := NewServer("127.0.0.1:0", as, cs, us, m, metrics.Handler(reg), logging.Nop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{srv: ts, mail: mb, users: us, registry: reg}
}

// do sends a JSON request (body may be nil) with an optional bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func (e *testEnv) loginForm(t *testing.T, username, password string) (*http.Response, []byte) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/auth/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.send(t, req)
}

// signUp registers, confirms and logs in a user, returning an access token.
func (e *testEnv) signUp(t *testing.T, username, email string) string {
	t.Helper()

	resp, _ := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "pass1234",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/auth/confirmed_email/"+e.mail.last(t, email), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.loginForm(t, username, "pass1234")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[tokenResponse](t, body).AccessToken
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func detailOf(t *testing.T, b []byte) string {
	t.Helper()
	return decode[detailResponse](t, b).Detail
}
