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

// Package sigtest provides test doubles for signal delivery. A Notifier
// records the channels registered for each signal and lets a test deliver
// signals deterministically, without touching the process-wide disposition.
//
// Note: Because this package imports the "testing" standard library, it
// should only be imported from test files.
package sigtest

import (
	"os"
	"slices"
	"sync"
	"testing"
)

// Notifier is an in-memory stand-in for os/signal. It is safe for concurrent
// use.
type Notifier struct {
	mu    sync.Mutex
	chans map[os.Signal][]chan<- os.Signal
	stops int
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{chans: make(map[os.Signal][]chan<- os.Signal)}
}

// Notify registers c for the given signals.
func (n *Notifier) Notify(c chan<- os.Signal, sig ...os.Signal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range sig {
		n.chans[s] = append(n.chans[s], c)
	}
}

// Stop unregisters c from all signals.
func (n *Notifier) Stop(c chan<- os.Signal) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for s, cs := range n.chans {
		n.chans[s] = slices.DeleteFunc(cs, func(x chan<- os.Signal) bool {
			return x == c
		})
	}
	n.stops++
}

// Send delivers sig to every channel registered for it. Like the runtime, it
// drops the delivery for a channel whose buffer is full. It returns the
// number of channels that received the signal.
func (n *Notifier) Send(sig os.Signal) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	sent := 0
	for _, c := range n.chans[sig] {
		select {
		case c <- sig:
			sent++
		default:
		}
	}
	return sent
}

// Registered returns the number of channels registered for sig.
func (n *Notifier) Registered(sig os.Signal) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.chans[sig])
}

// Stops returns how many times Stop has been called.
func (n *Notifier) Stops() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stops
}

// Panicking is a notifier whose Notify always panics, simulating a platform
// that refuses the subscription.
type Panicking struct{}

func (Panicking) Notify(chan<- os.Signal, ...os.Signal) { panic("subscription refused") }
func (Panicking) Stop(chan<- os.Signal)                 {}

// Raise sends sig to the current process. The caller must hold a
// subscription for sig, or the default disposition applies.
func Raise(t testing.TB, sig os.Signal) {
	t.Helper()
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("failed to find own process: %v", err)
	}
	if err := p.Signal(sig); err != nil {
		t.Fatalf("failed to send %v to self: %v", sig, err)
	}
}
