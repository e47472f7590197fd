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

package signal

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
)

// Notifier abstracts the registration of signal channels with the operating
// system. Its method set mirrors the standard library's os/signal package,
// which is used by default.
type Notifier interface {
	// Notify causes c to receive the given signals.
	Notify(c chan<- os.Signal, sig ...os.Signal)
	// Stop causes c to receive no more signals. When Stop returns, c is
	// guaranteed to receive no further deliveries.
	Stop(c chan<- os.Signal)
}

type system struct{}

func (system) Notify(c chan<- os.Signal, sig ...os.Signal) { signal.Notify(c, sig...) }
func (system) Stop(c chan<- os.Signal)                     { signal.Stop(c) }

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithNotifier replaces the notifier used to subscribe to OS signals. A nil
// value will be ignored.
func WithNotifier(n Notifier) HubOption {
	return func(h *Hub) {
		if n != nil {
			h.notifier = n
		}
	}
}

// subscription is the single OS-level registration shared by all handles of
// one trigger.
type subscription struct {
	ch      chan os.Signal
	quit    chan struct{}
	handles map[*Handle]struct{}
}

// Hub fans a single OS subscription per trigger out to any number of
// handles. A Hub is safe for concurrent use.
type Hub struct {
	notifier Notifier
	mu       sync.Mutex
	subs     map[Trigger]*subscription
}

// NewHub creates a Hub that subscribes through os/signal unless configured
// otherwise.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		notifier: system{},
		subs:     make(map[Trigger]*subscription),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var std = NewHub()

// DefaultHub returns the process-wide hub used by the package-level
// functions.
func DefaultHub() *Hub { return std }

// Install returns a new handle for the given trigger. The OS subscription is
// created on the first handle of a trigger and shared by all later ones. If
// the trigger is unavailable on this platform, the handle never resolves and
// no subscription is made.
func (h *Hub) Install(t Trigger) (*Handle, error) {
	if !t.valid() {
		return nil, &InstallError{Trigger: t, Err: ErrUnknownTrigger}
	}
	sig := t.Signal()
	if sig == nil {
		return newHandle(nil, t), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[t]
	if !ok {
		var err error
		if sub, err = h.subscribe(sig); err != nil {
			return nil, &InstallError{Trigger: t, Err: err}
		}
		h.subs[t] = sub
		go h.dispatch(sub)
	}

	handle := newHandle(h, t)
	sub.handles[handle] = struct{}{}
	return handle, nil
}

// Subscribers returns the number of unreleased handles for the trigger.
func (h *Hub) Subscribers(t Trigger) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[t]; ok {
		return len(sub.handles)
	}
	return 0
}

func (h *Hub) subscribe(sig os.Signal) (sub *subscription, err error) {
	// A buffer of one keeps a delivery that arrives while the dispatcher is
	// busy broadcasting.
	ch := make(chan os.Signal, 1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrNotifyFailed, r)
		}
	}()
	h.notifier.Notify(ch, sig)
	return &subscription{
		ch:      ch,
		quit:    make(chan struct{}),
		handles: make(map[*Handle]struct{}),
	}, nil
}

func (h *Hub) dispatch(sub *subscription) {
	for {
		select {
		case <-sub.ch:
			h.broadcast(sub)
		case <-sub.quit:
			return
		}
	}
}

func (h *Hub) broadcast(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for handle := range sub.handles {
		handle.resolve()
	}
}

func (h *Hub) release(handle *Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.subs[handle.trigger]
	if !ok {
		return
	}
	delete(sub.handles, handle)
	if len(sub.handles) > 0 {
		return
	}
	delete(h.subs, handle.trigger)
	h.notifier.Stop(sub.ch)
	close(sub.quit)
}
