// Package updater submits update requests to the updater service one at a
// time and follows each one through the results it reports.
package updater

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/revrobotics/chupdater/application/receiver"
	"github.com/revrobotics/chupdater/domain/entities"
	"github.com/revrobotics/chupdater/domain/ports"
	"github.com/revrobotics/chupdater/wireformat"
	"go.uber.org/zap"
)

const (
	// DefaultBusyMarker is the text of the error the updater reports while
	// another update is still being installed.
	DefaultBusyMarker = "Busy with previous update"
	// DefaultBusyRetryDelay is how long to wait before asking again.
	DefaultBusyRetryDelay = time.Second
	// DefaultQueueSize bounds the number of pending requests.
	DefaultQueueSize = 16

	preparingOTAMessage = "Extracting Driver Hub OS update"
	resultBufferSize    = 16
)

var (
	// ErrRunnerClosed is returned by Submit once the runner has stopped, and
	// is the outcome error of requests abandoned by Close.
	ErrRunnerClosed = errors.New("updater: runner closed")
	// ErrQueueFull is returned by Submit when no more requests can be queued.
	ErrQueueFull = errors.New("updater: request queue full")
	// ErrAlreadyRunning is returned when Run is called a second time.
	ErrAlreadyRunning = errors.New("updater: runner already started")
)

// Option configures a Runner.
type Option func(*Runner)

// WithBusyRetryDelay sets the delay before a request is restarted after a
// busy error.
func WithBusyRetryDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.retryDelay = d
		}
	}
}

// WithBusyMarker sets the error text that triggers a retry. An empty marker
// disables retries.
func WithBusyMarker(marker string) Option {
	return func(r *Runner) {
		r.busyMarker = marker
	}
}

// WithQueueSize sets the number of requests that can wait for the worker.
func WithQueueSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// Runner processes update requests sequentially: a request is only
// considered finished once the updater reports a terminal result for it.
type Runner struct {
	svc    ports.UpdaterService
	recv   *receiver.Receiver
	logger *zap.Logger

	busyMarker string
	retryDelay time.Duration
	queueSize  int

	queue     chan entities.UpdateRequest
	done      chan entities.UpdateOutcome
	closing   chan struct{}
	closeOnce sync.Once
	startOnce sync.Once

	mu      sync.RWMutex
	current *entities.UpdateState

	// submitMu orders Submit against the final drain of the queue.
	submitMu sync.RWMutex
	stopped  bool
}

// NewRunner creates a Runner. A nil receiver is replaced by one without
// subscribers; a nil logger discards logs.
func NewRunner(svc ports.UpdaterService, recv *receiver.Receiver, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recv == nil {
		recv = receiver.New(logger)
	}
	r := &Runner{
		svc:        svc,
		recv:       recv,
		logger:     logger,
		busyMarker: DefaultBusyMarker,
		retryDelay: DefaultBusyRetryDelay,
		queueSize:  DefaultQueueSize,
		closing:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.queue = make(chan entities.UpdateRequest, r.queueSize)
	r.done = make(chan entities.UpdateOutcome, r.queueSize)
	return r
}

// Submit queues req and returns its ID, generating one when req.ID is empty.
func (r *Runner) Submit(ctx context.Context, req entities.UpdateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.submitMu.RLock()
	defer r.submitMu.RUnlock()
	if r.stopped {
		return "", ErrRunnerClosed
	}
	select {
	case <-r.closing:
		return "", ErrRunnerClosed
	default:
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	select {
	case r.queue <- req:
		r.logger.Debug("update queued", zap.String("request_id", req.ID), zap.String("package", req.PackageName))
		return req.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Done delivers one outcome per processed request. It is closed when Run
// returns.
func (r *Runner) Done() <-chan entities.UpdateOutcome {
	return r.done
}

// Current returns the last status of the request in flight, if any.
func (r *Runner) Current() (entities.UpdateState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return entities.UpdateState{}, false
	}
	return *r.current, true
}

// Close stops the runner. The request in flight and every request still
// queued are abandoned: each gets an outcome with ErrRunnerClosed on Done,
// as long as Done has room for it.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		close(r.closing)
	})
}

// Run processes queued requests until ctx is done or Close is called.
// It returns nil after Close and ctx.Err() on cancellation. Requests left in
// the queue are reported on Done with ErrRunnerClosed or ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	started := false
	r.startOnce.Do(func() { started = true })
	if !started {
		return ErrAlreadyRunning
	}

	err := r.loop(ctx)
	r.abandonQueued(ctx, err)
	close(r.done)
	return err
}

func (r *Runner) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.closing:
			return nil
		case req := <-r.queue:
			select {
			case <-r.closing:
				r.emit(ctx, entities.UpdateOutcome{Request: req, Err: ErrRunnerClosed})
				return nil
			default:
			}
			outcome := r.process(ctx, req)
			r.emit(ctx, outcome)
		}
	}
}

// abandonQueued stops Submit and reports every queued request as failed
// with the reason Run stopped.
func (r *Runner) abandonQueued(ctx context.Context, runErr error) {
	r.submitMu.Lock()
	r.stopped = true
	r.submitMu.Unlock()

	reason := runErr
	if reason == nil {
		reason = ErrRunnerClosed
	}
	for {
		select {
		case req := <-r.queue:
			r.logger.Info("abandoning queued update", zap.String("request_id", req.ID), zap.Error(reason))
			r.emit(ctx, entities.UpdateOutcome{Request: req, Err: reason})
		default:
			return
		}
	}
}

func (r *Runner) emit(ctx context.Context, outcome entities.UpdateOutcome) {
	select {
	case r.done <- outcome:
		return
	default:
	}
	select {
	case r.done <- outcome:
	case <-ctx.Done():
		r.logger.Warn("dropping update outcome", zap.String("request_id", outcome.Request.ID))
	case <-r.closing:
		r.logger.Warn("dropping update outcome", zap.String("request_id", outcome.Request.ID))
	}
}

func (r *Runner) process(ctx context.Context, req entities.UpdateRequest) entities.UpdateOutcome {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer r.setCurrent(nil)

	logger := r.logger.With(zap.String("request_id", req.ID), zap.String("package", req.PackageName))
	outcome := entities.UpdateOutcome{Request: req}

	results := make(chan wireformat.Bundle, resultBufferSize)
	sink := ports.ResultSinkFunc(func(b wireformat.Bundle) {
		select {
		case results <- b:
		case <-reqCtx.Done():
		}
	})

	if req.Action == entities.ActionApplyOTAUpdate {
		sink.Send(wireformat.NewBundle(preparingOTAResult()))
	}

	start := func() error {
		outcome.Attempts++
		if err := r.svc.Start(reqCtx, req, sink); err != nil {
			return fmt.Errorf("start update %s: %w", req.ID, err)
		}
		return nil
	}

	logger.Info("starting update", zap.String("action", req.Action.String()))
	if err := start(); err != nil {
		logger.Error("update could not be started", zap.Error(err))
		outcome.Err = err
		return outcome
	}

	for {
		select {
		case <-ctx.Done():
			outcome.Err = ctx.Err()
			return outcome
		case <-r.closing:
			outcome.Err = ErrRunnerClosed
			return outcome
		case b := <-results:
			result := r.recv.Receive(reqCtx, b)
			if !result.IsTerminal() {
				r.setCurrent(&entities.UpdateState{Request: req, Status: result, UpdatedAt: time.Now()})
				continue
			}

			if r.isBusy(result) {
				logger.Warn("updater is busy with a previous update, trying again", zap.Duration("delay", r.retryDelay))
				if err := r.wait(ctx); err != nil {
					outcome.Err = err
					return outcome
				}
				if err := start(); err != nil {
					logger.Error("update could not be restarted", zap.Error(err))
					outcome.Err = err
					return outcome
				}
				continue
			}

			logger.Info("update finished",
				zap.String("presentation", result.PresentationType().String()),
				zap.Int("code", result.Code()),
				zap.Int("attempts", outcome.Attempts))
			outcome.Result = &result
			return outcome
		}
	}
}

func (r *Runner) isBusy(result entities.Result) bool {
	return r.busyMarker != "" &&
		result.PresentationType() == entities.PresentationError &&
		strings.Contains(result.Message(), r.busyMarker)
}

func (r *Runner) wait(ctx context.Context) error {
	timer := time.NewTimer(r.retryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.closing:
		return ErrRunnerClosed
	}
}

func (r *Runner) setCurrent(state *entities.UpdateState) {
	r.mu.Lock()
	r.current = state
	r.mu.Unlock()
}

func preparingOTAResult() entities.Result {
	return entities.NewResult(entities.NewResultType(
		entities.CategoryOTAUpdate,
		0,
		entities.PresentationStatus,
		entities.DetailLogged,
		preparingOTAMessage,
	))
}
