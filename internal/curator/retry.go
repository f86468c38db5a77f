package curator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/nguyentantai21042004/storycut/internal/config"
	"github.com/nguyentantai21042004/storycut/internal/models"
)

var transientMarkers = []string{
	"429", "quota", "resource_exhausted", "rate limit", "unavailable",
	"502", "503", "504", "timeout", "deadline exceeded", "connection reset",
}

// isTransient reports whether a reasoning failure is worth retrying.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// backoff returns the wait before retry n (1-based): initial * 2^(n-1), capped.
func backoff(cfg config.CuratorConfig, n int) time.Duration {
	d := config.Seconds(cfg.InitialBackoff)
	limit := config.Seconds(cfg.MaxBackoff)
	for i := 1; i < n; i++ {
		d *= 2
		if limit > 0 && d >= limit {
			return limit
		}
	}
	return d
}

// reason calls the reasoner with a per-attempt timeout and retries transient
// failures. It returns the answer and the number of attempts made.
func (c *implCurator) reason(ctx context.Context, clip models.Clip, prompt string) (string, int, error) {
	maxAttempts := max(c.cfg.MaxAttempts, 1)
	timeout := config.Seconds(c.cfg.TimeoutSeconds)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := c.reasoner.Reason(attemptCtx, prompt)
		cancel()
		if err == nil {
			return raw, attempt, nil
		}
		if attemptCtx.Err() == context.DeadlineExceeded && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}

		if errors.Is(err, ErrEmptyAnswer) {
			return "", attempt, models.NewCurationParseError("reason", err)
		}
		if !isTransient(err) {
			return "", attempt, models.NewCurationError("reason", err, false)
		}
		lastErr = err
		if attempt == maxAttempts {
			break
		}

		wait := backoff(c.cfg, attempt)
		c.logger.Warn(ctx, "Curation attempt %d/%d for %s failed: %v (retrying in %s)",
			attempt, maxAttempts, clip.Name(), err, wait)
		if err := c.sleep(ctx, wait); err != nil {
			return "", attempt, models.NewCurationError("reason", err, false)
		}
	}

	return "", maxAttempts, models.NewCurationError("reason",
		fmt.Errorf("gave up after %d attempts: %w", maxAttempts, lastErr), true)
}
