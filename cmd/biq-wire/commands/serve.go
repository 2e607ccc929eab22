package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/qbiq/biq-go/pkg/httpapi"
	"github.com/qbiq/biq-go/pkg/log"
	"github.com/qbiq/biq-go/pkg/push"
	"github.com/qbiq/biq-go/pkg/store"
	"github.com/qbiq/biq-go/pkg/wire"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Addr     string
	DBPath   string
	Secret   string
	Broker   string
	EventLog string

	// EventLogMax rotates the event log at this size, keeping three
	// segments. Zero disables rotation.
	EventLogMax int64
	LogLevel    string
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.ToUpper(s)))
	return level, err
}

// Service is a configured API server with the resources it owns.
type Service struct {
	Handler http.Handler

	store     *store.Store
	events    *log.FileLogger
	publisher *push.MQTTPublisher
}

// NewService opens the store, event log and broker connection and builds
// the API handler.
func NewService(opts ServeOptions, logger *slog.Logger) (*Service, error) {
	if opts.Secret == "" {
		return nil, errors.New("secret is required")
	}

	svc := &Service{}
	ok := false
	defer func() {
		if !ok {
			svc.Close()
		}
	}()

	st, err := store.NewStore(opts.DBPath)
	if err != nil {
		return nil, err
	}
	svc.store = st

	codecOpts := wire.DefaultOptions()
	codecOpts.Logger = logger
	sinks := []log.Logger{log.NewSlogAdapter(logger)}
	if opts.EventLog != "" {
		fl, err := log.OpenFileLogger(opts.EventLog, log.FileLoggerOptions{MaxBytes: opts.EventLogMax, Keep: 3})
		if err != nil {
			return nil, fmt.Errorf("failed to open event log: %w", err)
		}
		svc.events = fl
		sinks = append(sinks, fl)
	}
	codecOpts.EventLogger = log.NewMultiLogger(sinks...)
	codec := wire.NewCodec(codecOpts)

	var notifier *push.Notifier
	if opts.Broker != "" {
		pub, err := push.DialMQTT(push.MQTTConfig{BrokerURL: opts.Broker, Logger: logger})
		if err != nil {
			return nil, err
		}
		svc.publisher = pub
		notifier = push.NewNotifier(pub, push.Options{Logger: logger})
	}

	srv, err := httpapi.New(httpapi.Config{
		Store:    st,
		Secret:   []byte(opts.Secret),
		Codec:    codec,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	svc.Handler = srv.Handler()

	ok = true
	return svc, nil
}

// Close releases the service's resources.
func (s *Service) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.events != nil {
		s.events.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

// RunServe serves the API until ctx is cancelled.
func RunServe(ctx context.Context, opts ServeOptions) error {
	level, err := ParseLogLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", opts.LogLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	svc, err := NewService(opts, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	hs := &http.Server{
		Addr:              opts.Addr,
		Handler:           svc.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.Addr, "db", opts.DBPath)
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return hs.Shutdown(shutdownCtx)
}
