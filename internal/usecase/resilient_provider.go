package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"customs-gateway/internal/domain/entity"
	"customs-gateway/internal/domain/repository"
	"customs-gateway/pkg/logging"
)

// ResilientProvider bounds every completion with a timeout. Retries and the
// fallback model are opt-in because each attempt is a billed call.
type ResilientProvider struct {
	primary    repository.Completer
	fallback   repository.Completer // nil disables the fallback
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	logger     *logging.Logger
}

type ResilienceOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
	Timeout    time.Duration
}

func NewResilientProvider(primary, fallback repository.Completer, opts ResilienceOptions, logger *logging.Logger) *ResilientProvider {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 25 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ResilientProvider{
		primary:    primary,
		fallback:   fallback,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		timeout:    opts.Timeout,
		logger:     logger,
	}
}

func (r *ResilientProvider) Complete(ctx context.Context, conv entity.Conversation) (string, error) {
	// One slow completion must not hang the request.
	resCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.executeWithRetry(resCtx, r.primary, conv)
	if err == nil {
		return text, nil
	}
	if r.fallback == nil || resCtx.Err() != nil {
		return "", asTransient(err)
	}

	r.logger.Warn("primary completion failed, trying fallback", "error", err)
	text, err = r.fallback.Complete(resCtx, conv)
	if err != nil {
		return "", asTransient(fmt.Errorf("both primary and fallback failed: %w", err))
	}
	return text, nil
}

func (r *ResilientProvider) executeWithRetry(ctx context.Context, p repository.Completer, conv entity.Conversation) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		text, err := p.Complete(ctx, conv)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !r.isRetryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-time.After(r.calculateBackoff(attempt)):
			continue
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

func (r *ResilientProvider) isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	// Rate limits (429) and server errors (5xx)
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded")
}

func (r *ResilientProvider) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * backoff // 20% jitter
	return time.Duration(backoff + jitter)
}

// asTransient tags err as a transient service error; deadline overruns
// included.
func asTransient(err error) error {
	if errors.Is(err, entity.ErrTransientService) {
		return err
	}
	return fmt.Errorf("%w: %w", entity.ErrTransientService, err)
}
