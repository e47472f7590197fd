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

// Package shutdown waits for the first termination signal sent to the
// process, so that a host can begin an orderly shutdown instead of being
// killed abruptly.
//
// # Usage
//
// The simplest form blocks the calling goroutine:
//
//	go serve()
//	shutdown.Wait()
//	// Close listeners, drain work, exit.
//
// Hosts that combine the wait with other events use the deferred form:
//
//	s := shutdown.Listen()
//	defer s.Stop()
//	select {
//	case <-s.Done():
//	case err := <-errCh:
//	}
//
// or derive a context that is canceled once a signal arrives:
//
//	ctx, stop := shutdown.Context(context.Background())
//	defer stop()
//
// The wait resolves exactly once, on whichever trigger fires first. Before
// returning, it announces the event through the configured reporter; see
// package report.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/deep-rent/graceful/report"
	"github.com/deep-rent/graceful/signal"
)

// DefaultMessage is reported when a termination signal arrives.
const DefaultMessage = "Signal received, shutdown now..."

// ErrSignaled is the cause of contexts canceled by a termination signal.
var ErrSignaled = errors.New("shutdown: termination signal received")

type config struct {
	hub      *signal.Hub
	reporter report.Reporter
	triggers []signal.Trigger
	message  string
}

// Option configures a Waiter.
type Option func(*config)

// WithHub sets the hub through which triggers are installed. If not set, the
// process-wide default hub is used. A nil value will be ignored.
func WithHub(hub *signal.Hub) Option {
	return func(c *config) {
		if hub != nil {
			c.hub = hub
		}
	}
}

// WithReporter sets the reporter that announces the shutdown. If not set,
// report.Default() is consulted each time Listen is called.
func WithReporter(r report.Reporter) Option {
	return func(c *config) {
		c.reporter = r
	}
}

// WithTriggers restricts the triggers the waiter listens to. By default, all
// recognized triggers are used. An empty list will be ignored.
func WithTriggers(triggers ...signal.Trigger) Option {
	return func(c *config) {
		if len(triggers) > 0 {
			c.triggers = triggers
		}
	}
}

// WithMessage overrides the reported message. An empty string will be
// ignored.
func WithMessage(msg string) Option {
	return func(c *config) {
		if msg != "" {
			c.message = msg
		}
	}
}

// Waiter waits for termination signals. A Waiter holds no state between
// calls and is safe for concurrent use; each call installs its own handles.
type Waiter struct {
	cfg config
}

// New creates a Waiter with the given options.
func New(opts ...Option) *Waiter {
	cfg := config{
		hub:      signal.DefaultHub(),
		triggers: signal.Triggers(),
		message:  DefaultMessage,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Waiter{cfg: cfg}
}

// Listen installs the configured triggers and returns immediately. The
// returned Shutdown resolves on the first trigger that fires. Listen fails if
// any trigger cannot be installed; such an error must prevent the host from
// serving.
func (w *Waiter) Listen() (*Shutdown, error) {
	r := w.cfg.reporter
	if r == nil {
		r = report.Default()
	}

	handles := make([]*signal.Handle, 0, len(w.cfg.triggers))
	for _, t := range w.cfg.triggers {
		h, err := w.cfg.hub.Install(t)
		if err != nil {
			for _, h := range handles {
				h.Release()
			}
			return nil, fmt.Errorf("shutdown: %w", err)
		}
		handles = append(handles, h)
	}

	s := &Shutdown{
		handles:  handles,
		reporter: report.Safe(r),
		message:  w.cfg.message,
		done:     make(chan struct{}),
		quit:     make(chan struct{}),
	}
	for _, h := range handles {
		go s.watch(h)
	}
	return s, nil
}

// Wait blocks until a termination signal arrives. The subscriptions are
// released before Wait returns, which restores the default signal
// disposition. The only possible error is a failure to install a trigger.
func (w *Waiter) Wait() error {
	s, err := w.Listen()
	if err != nil {
		return err
	}
	defer s.Stop()
	s.Wait()
	return nil
}

// Context returns a copy of parent that is canceled with cause ErrSignaled
// once a termination signal arrives. Calling stop releases the
// subscriptions and cancels the context.
func (w *Waiter) Context(parent context.Context) (ctx context.Context, stop context.CancelFunc, err error) {
	s, err := w.Listen()
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		select {
		case <-s.Done():
			cancel(ErrSignaled)
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		s.Stop()
		cancel(nil)
	}, nil
}

// Shutdown is a pending shutdown event. It resolves at most once.
type Shutdown struct {
	handles  []*signal.Handle
	reporter report.Reporter
	message  string

	fire    sync.Once
	release sync.Once
	trigger atomic.Int32
	done    chan struct{}
	quit    chan struct{}
}

func (s *Shutdown) watch(h *signal.Handle) {
	select {
	case <-h.Done():
		s.resolve(h.Trigger())
	case <-s.quit:
	}
}

func (s *Shutdown) resolve(t signal.Trigger) {
	s.fire.Do(func() {
		s.trigger.Store(int32(t) + 1)
		s.reporter.Report(report.Info, s.message)
		close(s.done)
	})
}

// Done returns a channel that is closed once a termination signal has
// arrived and the event has been reported.
func (s *Shutdown) Done() <-chan struct{} { return s.done }

// Wait blocks until Done is closed.
func (s *Shutdown) Wait() { <-s.done }

// Trigger returns the trigger that resolved the shutdown. The boolean is
// false while the shutdown is still pending.
func (s *Shutdown) Trigger() (signal.Trigger, bool) {
	v := s.trigger.Load()
	if v == 0 {
		return 0, false
	}
	return signal.Trigger(v - 1), true
}

// Stop releases the subscriptions. A shutdown that has not resolved yet will
// never resolve afterwards. It is safe to call Stop multiple times.
func (s *Shutdown) Stop() {
	s.release.Do(func() {
		// Waits for a resolution in progress, and blocks any later one.
		s.fire.Do(func() {})
		close(s.quit)
		for _, h := range s.handles {
			h.Release()
		}
	})
}

var std = New()

// Wait blocks until a termination signal arrives, reporting the event through
// report.Default(). It panics if a trigger cannot be installed, since a
// process without its shutdown path must not run.
func Wait() {
	if err := std.Wait(); err != nil {
		panic(err)
	}
}

// Listen is the deferred form of Wait. The caller should Stop the returned
// Shutdown once it is no longer needed. It panics if a trigger cannot be
// installed.
func Listen() *Shutdown {
	s, err := std.Listen()
	if err != nil {
		panic(err)
	}
	return s
}

// Context returns a copy of parent that is canceled with cause ErrSignaled
// once a termination signal arrives. It panics if a trigger cannot be
// installed.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop, err := std.Context(parent)
	if err != nil {
		panic(err)
	}
	return ctx, stop
}
