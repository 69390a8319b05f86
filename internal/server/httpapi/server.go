// Package httpapi is the HTTP boundary of the server: it routes requests to
// the auth service, transports tokens in cookies and maps service errors to
// status codes.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/staffhub/internal/logging"
	"github.com/dmitrijs2005/staffhub/internal/server/services"
	"github.com/dmitrijs2005/staffhub/internal/server/validation"
)

const defaultShutdownTimeout = 10 * time.Second

// AuthService is the part of services.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Register(ctx context.Context, in validation.RegisterInput) (*services.RegisterResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type Options struct {
	Addr            string
	AppName         string
	SecureCookies   bool // Secure attribute on token cookies
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	opts   Options
	auth   AuthService
	logger logging.Logger
	engine *gin.Engine
}

func NewServer(opts Options, auth AuthService, l logging.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		opts:   opts,
		auth:   auth,
		logger: l.With("module", "http_server"),
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	// A nil list only turns proxy trust off; it has no CIDRs to fail on.
	_ = r.SetTrustedProxies(nil)

	r.Use(s.requestLogger(), gin.CustomRecovery(s.handlePanic))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "Not found"})
	})

	r.GET("/", s.hello)

	a := r.Group("/Auth")
	a.POST("/login", s.login)
	a.POST("/register", s.register)
	a.POST("/refresh-token", s.refreshToken)

	return r
}

// Run serves until ctx is canceled and then shuts down gracefully, waiting
// at most ShutdownTimeout for in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listen)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
