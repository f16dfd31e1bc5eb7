package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	pkgerrs "github.com/jamesprial/go-threads-api-wrapper/pkg/errors"
	"github.com/jamesprial/go-threads-api-wrapper/pkg/types"
)

const (
	// DefaultPollInterval follows the platform's recommended status-check
	// cadence. The interval is fixed per call rather than backed off:
	// processing time is platform-controlled and typically short.
	DefaultPollInterval = 1 * time.Second
	// DefaultMaxWait bounds how long a single await call will poll.
	DefaultMaxWait = 60 * time.Second
)

// Decision is the next step chosen by the polling state machine.
type Decision int

const (
	// DecisionWait means the container is still processing and the poller
	// should sleep one interval and query again.
	DecisionWait Decision = iota
	// DecisionReady means the container is FINISHED and may be published.
	DecisionReady
	// DecisionFailed means the container reached a terminal state that can
	// never be published; a retry requires a new container.
	DecisionFailed
	// DecisionTimedOut means the wait ceiling elapsed without a terminal
	// state. The container may still finish later; its ID remains pollable.
	DecisionTimedOut
)

// Decide maps an observed container status and elapsed wait onto the next
// polling step. It is a pure function of its inputs so the loop around it
// stays a thin driver and the transition logic is testable without timers.
//
// Terminal statuses win over the deadline: a container observed FINISHED on
// the final poll is ready, not timed out.
func Decide(status types.ContainerStatus, elapsed, maxWait time.Duration) Decision {
	switch status {
	case types.ContainerFinished:
		return DecisionReady
	case types.ContainerError, types.ContainerExpired, types.ContainerPublished:
		return DecisionFailed
	}
	if elapsed >= maxWait {
		return DecisionTimedOut
	}
	return DecisionWait
}

// failureMessage explains a DecisionFailed status when the platform did not
// attach its own error message.
func failureMessage(c types.Container) string {
	if c.ErrorMessage != "" {
		return c.ErrorMessage
	}
	switch c.Status {
	case types.ContainerExpired:
		return "container expired before publishing"
	case types.ContainerPublished:
		return "container was already published"
	}
	return "processing failed"
}

// StatusFunc queries the current state of a container. It must be a pure
// read; the poller issues no other side effects.
type StatusFunc func(ctx context.Context, containerID string) (types.Container, error)

// Poller drives repeated status checks against a container until it
// settles, the wait ceiling passes, or the context is cancelled.
type Poller struct {
	Clock  clockwork.Clock
	Logger *slog.Logger
}

// NewPoller returns a Poller on the real clock.
func NewPoller(logger *slog.Logger) *Poller {
	return &Poller{Clock: clockwork.NewRealClock(), Logger: logger}
}

// AwaitReady polls the container at the given cadence until it reaches a
// terminal state or maxWait elapses. Zero interval and maxWait select the
// defaults.
//
// Outcomes:
//   - FINISHED: the container is returned with a nil error.
//   - ERROR / EXPIRED / PUBLISHED: a *pkgerrs.ContainerError.
//   - ceiling reached: a *pkgerrs.TimeoutError; the container may still
//     finish later and the same ID can be polled again.
//   - context cancelled between polls: the context's error, distinct from
//     a timeout. No further status queries are issued after cancellation.
//
// The first status query happens immediately; at least one query is always
// issued, so callers get a definitive answer for containers that finish
// instantly.
func (p *Poller) AwaitReady(ctx context.Context, containerID string, status StatusFunc, interval, maxWait time.Duration) (types.Container, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	start := p.Clock.Now()

	for {
		c, err := status(ctx, containerID)
		if err != nil {
			return types.Container{}, err
		}

		elapsed := p.Clock.Since(start)
		if p.Logger != nil {
			p.Logger.Debug("container status",
				"container_id", containerID,
				"status", string(c.Status),
				"elapsed", elapsed.Round(time.Millisecond).String(),
			)
		}

		switch Decide(c.Status, elapsed, maxWait) {
		case DecisionReady:
			return c, nil
		case DecisionFailed:
			return c, &pkgerrs.ContainerError{ContainerID: containerID, Message: failureMessage(c)}
		case DecisionTimedOut:
			return c, &pkgerrs.TimeoutError{ContainerID: containerID, Waited: elapsed, LastStatus: string(c.Status)}
		}

		select {
		case <-ctx.Done():
			return c, ctx.Err()
		case <-p.Clock.After(interval):
		}
	}
}
