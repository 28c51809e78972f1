package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Flarenzy/whats-my-ip/internal/domain"
	apihttp "github.com/Flarenzy/whats-my-ip/internal/http"
	"github.com/Flarenzy/whats-my-ip/internal/ipify"
)

const shutdownTimeout = 5 * time.Second

func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	level, err := cfg.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func NewProvider(cfg LookupConfig, logger *slog.Logger) (domain.IPProvider, error) {
	client, err := ipify.NewClient(ipify.Config{
		URL:                  cfg.URL,
		Timeout:              cfg.Timeout,
		RequireSuccessStatus: cfg.RequireSuccessStatus,
	})
	if err != nil {
		return nil, err
	}
	return domain.NewLoggingIPProvider(logger, client), nil
}

func Run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, cfg, logger, listener)
}

// Serve runs the page server on listener until ctx ends, then drains page
// sessions and shuts down.
func Serve(ctx context.Context, cfg Config, logger *slog.Logger, listener net.Listener) error {
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := NewProvider(cfg.Lookup, logger)
	if err != nil {
		_ = listener.Close()
		return err
	}

	api := apihttp.NewAPI(logger, provider)

	server := &http.Server{
		Handler:      api.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	server.RegisterOnShutdown(api.Drain)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving page", "addr", listener.Addr().String(), "lookup_url", cfg.Lookup.URL)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
