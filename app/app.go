// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package app runs the workload of a host application until it finishes on
// its own or a termination signal arrives, in which case the workload's
// context is canceled and it gets a bounded amount of time to drain.
//
// The waiting itself is delegated to package shutdown; this package adds the
// host-side policy around it: cancellation, the drain budget, panic recovery
// and lifecycle logging.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/deep-rent/graceful/config"
	"github.com/deep-rent/graceful/report"
	"github.com/deep-rent/graceful/shutdown"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout is the default duration to wait for the application to
// gracefully shut down after receiving a termination signal.
const DefaultTimeout = config.DefaultTimeout

// Runnable defines a function that can be executed by the application runner.
// It receives a context that is canceled when a shutdown signal is received.
// The function should perform its cleanup and return when the context is done.
type Runnable func(ctx context.Context) error

type settings struct {
	logger  *slog.Logger
	timeout time.Duration
	ctx     context.Context
	waiter  *shutdown.Waiter
}

// Option is a function that configures the application runner.
type Option func(*settings)

// WithLogger provides a custom logger for the application runner. If not set,
// the runner defaults to slog.Default(). A nil value will be ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeout sets a custom timeout for the graceful shutdown process. A
// negative or zero duration will be ignored, and the DefaultTimeout is used
// instead.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithContext sets a parent context for the runner. Cancelling the parent
// context triggers a graceful shutdown. A nil value will be ignored.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// WithWaiter replaces the shutdown waiter. If not set, the runner listens to
// all triggers and reports the signal through its logger. A nil value will be
// ignored.
func WithWaiter(w *shutdown.Waiter) Option {
	return func(s *settings) {
		if w != nil {
			s.waiter = w
		}
	}
}

// Run is a shorthand for RunAll with a single Runnable.
func Run(fn Runnable, opts ...Option) error {
	return RunAll([]Runnable{fn}, opts...)
}

// RunAll launches every Runnable in its own goroutine and blocks until all of
// them have returned, a termination signal is caught, or the parent context
// is canceled. If one Runnable fails or panics, the others are canceled.
//
// Upon shutdown, the shared context is canceled and the Runnables get the
// configured timeout to return. The signal subscription is released as soon
// as the first signal arrives, so a repeated signal during the drain kills the
// process the default way. Errors equal to context.Canceled are treated
// as a clean exit.
func RunAll(fns []Runnable, opts ...Option) error {
	s := settings{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.waiter == nil {
		s.waiter = shutdown.New(shutdown.WithReporter(report.Slog(s.logger)))
	}

	sd, err := s.waiter.Listen()
	if err != nil {
		return fmt.Errorf("failed to install shutdown handlers: %w", err)
	}
	defer sd.Stop()

	ctx, cancel := context.WithCancelCause(s.ctx)
	defer cancel(nil)

	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error { return call(gctx, fn) })
	}
	errCh := make(chan error, 1)
	go func() { errCh <- g.Wait() }()

	s.logger.Info("Application started", "runnables", len(fns))

	select {
	case err := <-errCh:
		if err = clean(err); err != nil {
			return fmt.Errorf("encountered an application error: %w", err)
		}
		s.logger.Info("Application stopped")
		return nil
	case <-sd.Done():
		cancel(shutdown.ErrSignaled)
		// Restore the default disposition so that a second signal during the
		// drain terminates the process.
		sd.Stop()
	case <-s.ctx.Done():
		s.logger.Info("Parent context canceled, initiating graceful shutdown")
		cancel(context.Cause(s.ctx))
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		if err = clean(err); err != nil {
			return fmt.Errorf("error occurred during shutdown: %w", err)
		}
		s.logger.Info("Shutdown completed successfully")
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timed out after %v", s.timeout)
	}
}

// call runs fn and converts a panic into an error carrying the stack trace.
func call(ctx context.Context, fn Runnable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}

func clean(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
