package stubserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sofrahq/sofra-admin-session/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// defaultTokenTTL is the issued token lifetime when the config leaves
// it unset.
const defaultTokenTTL = 15 * time.Minute

// Config holds the stub server's settings.
type Config struct {
	// Host and Port form the listen address.
	Host string
	Port int

	// JWTSecret signs issued tokens. Any non-empty string works for a
	// dev stub; the client never verifies signatures anyway.
	JWTSecret string

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
}

// Server is the stub auth service.
type Server struct {
	cfg    Config
	logger *logging.Logger
	users  []User
	server *http.Server
}

// New creates a stub server with the given fixture users. A nil user
// list falls back to BuiltinUsers.
func New(cfg Config, users []User, logger *logging.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "sofra-stub-dev-secret"
	}
	if users == nil {
		users = BuiltinUsers()
	}
	return &Server{
		cfg:    cfg,
		logger: logger.With("component", "stubserver"),
		users:  users,
	}
}

// Start begins listening for HTTP connections in a background goroutine.
// The server stops via Close.
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("stub server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("stub server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("stub server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down stub server: %w", err)
	}
	return nil
}

// findByCredentials returns the fixture user matching the email and
// password, or nil.
func (s *Server) findByCredentials(email, password string) *User {
	for i := range s.users {
		if s.users[i].Email == email && s.users[i].Password == password {
			return &s.users[i]
		}
	}
	return nil
}

// findByID returns the fixture user with the given id, or nil.
func (s *Server) findByID(id string) *User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}
