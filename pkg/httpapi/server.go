package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/push"
	"github.com/qbiq/biq-go/pkg/store"
	"github.com/qbiq/biq-go/pkg/wire"
)

// Config configures a Server.
type Config struct {
	// Store holds accounts, devices and limits. Required.
	Store *store.Store

	// Secret signs and verifies HS256 tokens. Required.
	Secret []byte

	// Codec is the base codec; its format is overridden per request.
	// Defaults to wire.JSON().
	Codec *wire.Codec

	// Notifier publishes limit changes and observation alerts. Optional.
	Notifier *push.Notifier

	// Metrics counts requests and decodes. Defaults to NewMetrics(nil).
	Metrics *Metrics

	// Logger receives operational messages. Optional.
	Logger *slog.Logger

	// SessionTTL is the lifetime of session tokens issued at register and
	// login. Defaults to DefaultSessionTTL.
	SessionTTL time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Server serves the BIQ API.
type Server struct {
	store      *store.Store
	secret     []byte
	codec      *wire.Codec
	notifier   *push.Notifier
	metrics    *Metrics
	logger     *slog.Logger
	sessionTTL time.Duration
	now        func() time.Time
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("httpapi: store is required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("httpapi: secret is required")
	}

	s := &Server{
		store:      cfg.Store,
		secret:     cfg.Secret,
		codec:      cfg.Codec,
		notifier:   cfg.Notifier,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		sessionTTL: cfg.SessionTTL,
		now:        cfg.Now,
	}
	if s.codec == nil {
		s.codec = wire.JSON()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = DefaultSessionTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Middleware(routePattern))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/register", s.handleAccountRegister)
			r.Post("/login", s.handleAccountLogin)
			r.With(s.authenticate).Post("/mobile-devices", s.handleAddMobileDevice)
		})

		r.Group(s.authenticatedRoutes)
	})

	return r
}

func (s *Server) authenticatedRoutes(r chi.Router) {
	r.Use(s.authenticate)

	r.Route("/devices", func(r chi.Router) {
		r.Get("/", s.handleDeviceList)
		r.Post("/register", s.handleDeviceRegister)
		r.Post("/unregister", s.handleDeviceUnregister)
		r.Post("/update", s.handleDeviceUpdate)
		r.Post("/share", s.handleDeviceShare)
		r.Post("/share-token", s.handleDeviceShareToken)
		r.Post("/limits", s.handleDeviceLimits)
		r.Post("/limits/update", s.handleDeviceUpdateLimits)
		r.Post("/observations", s.handleDeviceObservations)
		r.Post("/observations/add", s.handleDeviceAddObservation)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Get("/", s.handleGroupList)
		r.Post("/create", s.handleGroupCreate)
		r.Post("/delete", s.handleGroupDelete)
		r.Post("/update", s.handleGroupUpdate)
		r.Post("/devices", s.handleGroupListDevices)
		r.Post("/add", s.handleGroupAddDevice)
		r.Post("/remove", s.handleGroupRemoveDevice)
	})
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, api.NewHealthCheckResponse(api.HealthOK))
}

// fail logs err and replies 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.errorLog("request failed", "path", r.URL.Path, "error", err)
	s.writeError(w, r, http.StatusInternalServerError, "internal error", "internal")
}

func (s *Server) errorLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

func (s *Server) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
