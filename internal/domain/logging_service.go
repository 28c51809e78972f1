package domain

import (
	"context"
	"log/slog"
	"time"
)

type loggingIPProvider struct {
	logger *slog.Logger
	next   IPProvider
}

// NewLoggingIPProvider records successful fetches at debug level. Failures
// are left to the caller so each one is reported exactly once.
func NewLoggingIPProvider(logger *slog.Logger, next IPProvider) IPProvider {
	if logger == nil || next == nil {
		return next
	}

	return &loggingIPProvider{
		logger: logger,
		next:   next,
	}
}

func (p *loggingIPProvider) FetchIP(ctx context.Context) (LookupResult, error) {
	start := time.Now()
	result, err := p.next.FetchIP(ctx)
	if err != nil {
		return result, err
	}

	p.logger.DebugContext(ctx, "public ip fetched", "ip", result.IP, "present", result.Present, "elapsed", time.Since(start))
	return result, nil
}
