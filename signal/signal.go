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

// Package signal translates operating system termination notifications into
// a small, fixed and platform-uniform set of awaitable handles.
//
// Two triggers are recognized: Interrupt (Ctrl+C, available everywhere) and
// Terminate (SIGTERM, available on Unix-family systems only). Installing a
// trigger the platform lacks yields a handle that never resolves, so callers
// can select over all handles without platform conditionals of their own.
//
// # Usage
//
//	h, err := signal.InstallInterrupt()
//	if err != nil {
//		panic(err)
//	}
//	defer h.Release()
//	<-h.Done()
//
// # Delivery
//
// The OS signal disposition is a process-wide resource. All handles created
// through the same Hub share a single OS subscription per trigger, and every
// delivered signal is broadcast to all handles subscribed at that moment.
// Two independent waiters in one process therefore both resolve on a single
// interrupt. Once the last handle of a trigger is released, the subscription
// is stopped and the default disposition is restored.
package signal

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Trigger enumerates the recognized termination requests.
type Trigger uint8

const (
	Interrupt Trigger = iota // Operator interrupt (os.Interrupt).
	Terminate                // Graceful termination request (SIGTERM).
)

var names = [...]string{
	Interrupt: "interrupt",
	Terminate: "terminate",
}

// Triggers returns all recognized triggers, including the ones that are not
// available on the current platform.
func Triggers() []Trigger {
	return []Trigger{Interrupt, Terminate}
}

// String returns the lower-case name of the trigger.
func (t Trigger) String() string {
	if !t.valid() {
		return fmt.Sprintf("trigger(%d)", uint8(t))
	}
	return names[t]
}

// Signal returns the OS signal backing the trigger, or nil if the current
// platform has no such signal.
func (t Trigger) Signal() os.Signal {
	return signals[t]
}

// Available reports whether the trigger can fire on the current platform.
func (t Trigger) Available() bool {
	return t.Signal() != nil
}

func (t Trigger) valid() bool {
	return int(t) < len(names)
}

// ParseTrigger converts a case-insensitive trigger name into a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	for i, name := range names {
		if strings.EqualFold(s, name) {
			return Trigger(i), nil
		}
	}
	return 0, fmt.Errorf("signal: %w %q", ErrUnknownTrigger, s)
}

var (
	// ErrUnknownTrigger is returned when installing a trigger outside the
	// recognized enumeration.
	ErrUnknownTrigger = errors.New("unknown trigger")
	// ErrNotifyFailed is returned when the notifier refuses a subscription.
	ErrNotifyFailed = errors.New("notifier failed")
)

// InstallError reports that the subscription for a trigger could not be
// installed. A process that cannot install its shutdown triggers must not
// start serving.
type InstallError struct {
	Trigger Trigger
	Err     error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("signal: failed to install %s handler: %v", e.Trigger, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// Handle is an awaitable that resolves when its trigger fires. It resolves at
// most once and carries no payload.
type Handle struct {
	trigger Trigger
	hub     *Hub
	done    chan struct{}
	fire    sync.Once
	release sync.Once
}

func newHandle(hub *Hub, t Trigger) *Handle {
	return &Handle{
		trigger: t,
		hub:     hub,
		done:    make(chan struct{}),
	}
}

// Trigger returns the trigger this handle waits for.
func (h *Handle) Trigger() Trigger { return h.trigger }

// Done returns a channel that is closed once the trigger fires. For triggers
// unavailable on the current platform, the channel is never closed.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Fired reports whether the trigger has fired.
func (h *Handle) Fired() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Release drops the handle's subscription. A handle that has not fired yet
// will never fire after Release returns. It is safe to call Release multiple
// times.
func (h *Handle) Release() {
	h.release.Do(func() {
		if h.hub != nil {
			h.hub.release(h)
		}
	})
}

func (h *Handle) resolve() {
	h.fire.Do(func() { close(h.done) })
}

// Install subscribes to the given trigger through the default hub.
func Install(t Trigger) (*Handle, error) {
	return std.Install(t)
}

// InstallInterrupt subscribes to the operator interrupt.
func InstallInterrupt() (*Handle, error) {
	return std.Install(Interrupt)
}

// InstallTerminate subscribes to the termination request. On platforms
// without SIGTERM, the returned handle never resolves.
func InstallTerminate() (*Handle, error) {
	return std.Install(Terminate)
}

// MustInstall is like Install but panics if the subscription cannot be
// installed.
func MustInstall(t Trigger) *Handle {
	h, err := std.Install(t)
	if err != nil {
		panic(err)
	}
	return h
}
