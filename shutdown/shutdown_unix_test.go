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

//go:build unix

package shutdown_test

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/deep-rent/graceful/report"
	"github.com/deep-rent/graceful/shutdown"
	"github.com/deep-rent/graceful/signal"
	"github.com/deep-rent/graceful/testutil/sigtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen_TerminateAloneResolves(t *testing.T) {
	hub, n := newHub()
	rec := &recorder{}
	s, err := shutdown.New(shutdown.WithHub(hub), shutdown.WithReporter(rec)).Listen()
	require.NoError(t, err)
	defer s.Stop()

	require.Equal(t, 1, n.Send(syscall.SIGTERM))
	requireDone(t, s.Done())

	trigger, fired := s.Trigger()
	assert.True(t, fired)
	assert.Equal(t, signal.Terminate, trigger)
	assert.Len(t, rec.calls(), 1)
}

func TestListen_RapidTriggersResolveOnce(t *testing.T) {
	hub, n := newHub()
	rec := &recorder{}
	s, err := shutdown.New(shutdown.WithHub(hub), shutdown.WithReporter(rec)).Listen()
	require.NoError(t, err)
	defer s.Stop()

	n.Send(os.Interrupt)
	n.Send(syscall.SIGTERM)
	requireDone(t, s.Done())
	time.Sleep(20 * time.Millisecond)

	assert.Len(t, rec.calls(), 1)
}

func TestWait_RealInterrupt(t *testing.T) {
	t.Cleanup(func() { report.SetDefault(nil) })
	rec := &recorder{}
	report.SetLevel(report.Info)
	report.SetDefault(rec)

	done := make(chan struct{})
	go func() {
		defer close(done)
		shutdown.Wait()
	}()

	require.Eventually(t, func() bool {
		return signal.DefaultHub().Subscribers(signal.Interrupt) > 0
	}, timeout, 5*time.Millisecond)

	sigtest.Raise(t, syscall.SIGINT)
	requireDone(t, done)

	calls := rec.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, report.Info, calls[0].severity)
	assert.NotEmpty(t, calls[0].msg)
}

func TestListen_RealTerminate(t *testing.T) {
	t.Cleanup(func() { report.SetDefault(nil) })
	report.SetDefault(report.Nop)

	s := shutdown.Listen()
	defer s.Stop()

	sigtest.Raise(t, syscall.SIGTERM)
	requireDone(t, s.Done())

	trigger, _ := s.Trigger()
	assert.Equal(t, signal.Terminate, trigger)
}

func TestContext_RealInterrupt(t *testing.T) {
	t.Cleanup(func() { report.SetDefault(nil) })
	report.SetDefault(report.Nop)

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	sigtest.Raise(t, syscall.SIGINT)
	requireDone(t, ctx.Done())
	assert.ErrorIs(t, context.Cause(ctx), shutdown.ErrSignaled)
}

func TestListen_RealSignalReachesAllWaiters(t *testing.T) {
	t.Cleanup(func() { report.SetDefault(nil) })
	report.SetDefault(report.Nop)

	s1 := shutdown.Listen()
	defer s1.Stop()
	s2 := shutdown.Listen()
	defer s2.Stop()

	sigtest.Raise(t, syscall.SIGINT)
	requireDone(t, s1.Done())
	requireDone(t, s2.Done())
}
