package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/dbx"
	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/auth"
	"github.com/dmitrijs2005/contactkeeper/internal/server/config"
	"github.com/dmitrijs2005/contactkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/server/models"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contactkeeper/internal/server/repositories/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type sentMail struct {
	kind     string
	to       string
	username string
	host     string
	token    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *recordingNotifier) SendConfirmation(ctx context.Context, to, username, host, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{"confirm", to, username, host, token})
}

func (n *recordingNotifier) SendPasswordReset(ctx context.Context, to, username, host, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{"reset", to, username, host, token})
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *recordingNotifier) last(t *testing.T) sentMail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no mail sent")
	return n.sent[len(n.sent)-1]
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BaseURL = "http://test.local/"
	cfg.SecretKey = "test-secret"
	return cfg
}

type authFixture struct {
	svc      *AuthService
	rm       *repomanager.InMemoryRepositoryManager
	notifier *recordingNotifier
	tokens   *auth.TokenService
	clock    *clock
	metrics  *metrics.Metrics
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	cfg := newTestConfig()
	c := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tokens := auth.NewTokenService([]byte(cfg.SecretKey), c.now)
	rm := repomanager.NewInMemoryRepositoryManager(memory.NewStore(c.now))
	n := &recordingNotifier{}
	m := metrics.NewMetrics(prometheus.NewRegistry())

	svc := NewAuthService(rm, tokens, &auth.BcryptHasher{Cost: bcrypt.MinCost}, n, cfg, logging.Nop(), m)
	return &authFixture{svc: svc, rm: rm, notifier: n, tokens: tokens, clock: c, metrics: m}
}

// registerConfirmed registers a user and confirms their email.
func (f *authFixture) registerConfirmed(t *testing.T, username, email, password string) *models.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), models.NewUser{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	_, err = f.svc.ConfirmEmail(context.Background(), f.notifier.last(t).token)
	require.NoError(t, err)
	return u
}

// fakeRepoManager serves the given repositories, with a pass-through Transact.
type fakeRepoManager struct {
	repomanager.RepositoryManager
	users    users.Repository
	contacts contacts.Repository
}

func (m *fakeRepoManager) Conn() dbx.DBTX                        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository       { return m.users }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository { return m.contacts }
func (m *fakeRepoManager) Transact(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

// failingUsersRepo fails every lookup with err.
type failingUsersRepo struct {
	users.Repository
	err error
}

func (r *failingUsersRepo) GetByID(context.Context, int64) (*models.User, error) { return nil, r.err }
func (r *failingUsersRepo) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, r.err
}
func (r *failingUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, r.err
}

// failingContactsRepo fails every call with err.
type failingContactsRepo struct {
	contacts.Repository
	err error
}

func (r *failingContactsRepo) ExistsByEmailOrPhone(context.Context, string, string) (bool, error) {
	return false, r.err
}
func (r *failingContactsRepo) List(context.Context, models.ContactFilter) ([]*models.Contact, error) {
	return nil, r.err
}
func (r *failingContactsRepo) GetByID(context.Context, int64, int64) (*models.Contact, error) {
	return nil, r.err
}
