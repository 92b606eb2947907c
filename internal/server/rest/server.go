// Package rest exposes the account, contact and user operations over HTTP.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/logging"
	"github.com/dmitrijs2005/contactkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/contactkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

const (
	apiBasePath      = "/api"
	authBasePath     = "/auth"
	contactsBasePath = "/contacts"
	usersBasePath    = "/users"

	paramID    = "id"
	paramToken = "token"
)

const (
	meRequestLimit  = 10
	meRequestWindow = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server is the REST API server.
type Server struct {
	address  string
	auth     *services.AuthService
	contacts *services.ContactService
	users    *services.UserService
	metrics  *metrics.Metrics
	scrape   http.Handler
	logger   logging.Logger
}

// NewServer builds a server listening on address. scrape serves /metrics and
// may be nil.
func NewServer(address string, as *services.AuthService, cs *services.ContactService, us *services.UserService,
	m *metrics.Metrics, scrape http.Handler, l logging.Logger) *Server {
	return &Server{
		address:  address,
		auth:     as,
		contacts: cs,
		users:    us,
		metrics:  m,
		scrape:   scrape,
		logger:   l.With("module", "rest_server"),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route(apiBasePath, func(r chi.Router) {
		r.Route(authBasePath, s.authRoutes)
		r.Route(contactsBasePath, s.contactRoutes)
		r.Route(usersBasePath, s.userRoutes)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.scrape != nil {
		r.Method(http.MethodGet, "/metrics", s.scrape)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}

func (s *Server) authRoutes(r chi.Router) {
	r.Post("/register", s.handle(s.handleRegister))
	r.Post("/login", s.handle(s.handleLogin))
	r.Get("/confirmed_email/{"+paramToken+"}", s.handle(s.handleConfirmEmail))
	r.Post("/request_email", s.handle(s.handleRequestEmail))
	r.Post("/reset_password", s.handle(s.handleResetPassword))
	r.Get("/confirm_reset_password/{"+paramToken+"}", s.handle(s.handleConfirmResetPassword))
}

func (s *Server) contactRoutes(r chi.Router) {
	r.Use(s.authenticate)

	r.Get("/", s.handle(s.handleListContacts))
	r.Post("/", s.handle(s.handleCreateContact))
	r.Get("/birthdays", s.handle(s.handleBirthdays))
	r.Get("/{"+paramID+"}", s.handle(s.handleGetContact))
	r.Put("/{"+paramID+"}", s.handle(s.handleUpdateContact))
	r.Delete("/{"+paramID+"}", s.handle(s.handleDeleteContact))
}

func (s *Server) userRoutes(r chi.Router) {
	r.Use(s.authenticate)

	r.With(httprate.Limit(meRequestLimit, meRequestWindow,
		httprate.WithKeyByIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondDetail(w, http.StatusTooManyRequests, "Too Many Requests")
		}),
	)).Get("/me", s.handle(s.handleMe))
	r.Patch("/avatar", s.handle(s.handleUpdateAvatar))
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
