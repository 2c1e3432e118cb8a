// Package httpapi exposes the vault over a JSON HTTP API: account and MFA
// endpoints, the credential CRUD surface behind the MFA gate, and the
// strength checker.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/dsmelov/securekey/internal/logging"
	"github.com/dsmelov/securekey/internal/server/config"
	"github.com/dsmelov/securekey/internal/server/services"
	"github.com/gorilla/handlers"
)

type Server struct {
	addr      string
	jwtSecret []byte
	logger    logging.Logger

	users       *services.UserService
	credentials *services.CredentialService
	strength    *services.StrengthService
}

func NewServer(cfg *config.Config, logger logging.Logger,
	users *services.UserService, credentials *services.CredentialService,
	strength *services.StrengthService) *Server {
	return &Server{
		addr:        cfg.EndpointAddr,
		jwtSecret:   []byte(cfg.JWTSecret),
		logger:      logger.With("component", "httpapi"),
		users:       users,
		credentials: credentials,
		strength:    strength,
	}
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      handlers.LoggingHandler(os.Stdout, s.Router()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
