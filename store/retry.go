package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// Retrier executes a SQL operation with bounded retry on transient
// connection-level failures. Each attempt is separated by a fixed delay;
// there is no backoff growth. A Retrier is terminal after MaxAttempts even
// when the final failure was classified transient.
type Retrier struct {
	// MaxAttempts is the total attempt ceiling, including the first try.
	MaxAttempts int

	// Delay is the fixed sleep between attempts.
	Delay time.Duration

	// IsTransient classifies driver errors. Dialects extend the base
	// classification with their own error codes. Nil means only the base
	// classification (bad connections, net errors) applies.
	IsTransient func(error) bool

	log zerolog.Logger
}

// NewRetrier creates a Retrier with the given ceiling and delay.
// maxAttempts below 1 is treated as 1.
func NewRetrier(maxAttempts int, delay time.Duration, isTransient func(error) bool, log zerolog.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		IsTransient: isTransient,
		log:         log,
	}
}

// Do runs op, retrying on transient failures until it succeeds, fails
// permanently, or the attempt ceiling is reached. The returned error is
// always an *OpError wrapping the final failure; callers use IsTransient to
// distinguish exhausted retries from permanent failures.
func (r *Retrier) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var last error
	for attempt := 1; ; attempt++ {
		last = op(ctx)
		if last == nil {
			return nil
		}

		transient := r.classify(last)
		if !transient {
			return &OpError{Op: name, Err: last}
		}
		if attempt >= r.MaxAttempts {
			return &OpError{Op: name, Transient: true, Err: last}
		}

		r.log.Warn().
			Str("op", name).
			Int("attempt", attempt).
			Int("max_attempts", r.MaxAttempts).
			Err(last).
			Msg("transient store failure, retrying")

		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return &OpError{Op: name, Err: ctx.Err()}
		}
	}
}

func (r *Retrier) classify(err error) bool {
	if isConnectionError(err) {
		return true
	}
	if r.IsTransient != nil && r.IsTransient(err) {
		return true
	}
	return false
}

// isConnectionError covers the driver-agnostic transient cases: a pooled
// connection that died between checkout and use, and network-level failures.
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
