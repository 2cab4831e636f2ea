package synopsis

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const MaxRetries = 3

// Summarizer is implemented by Client; tests substitute fakes.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// backoff is swapped out in tests.
var backoff = Backoff

// Generate calls s, retrying transient failures up to MaxRetries attempts, and
// validates the result.
func Generate(ctx context.Context, s Summarizer, req Request, log *slog.Logger) (string, error) {
	log = log.With("synopsis_id", uuid.NewString(), "title", req.Title)

	var lastErr error
	for attempt := range MaxRetries {
		var text string
		text, lastErr = s.Summarize(ctx, req)
		if lastErr == nil {
			if lastErr = Validate(text); lastErr != nil {
				break
			}
			log.Info("synopsis generated", "attempt", attempt, "chars", len(text))
			return text, nil
		}
		if !IsRetryable(lastErr) {
			break
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable synopsis error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	log.Error("synopsis failed", "error", lastErr)
	return "", lastErr
}
