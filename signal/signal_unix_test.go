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

package signal_test

import (
	"syscall"
	"testing"

	"github.com/deep-rent/graceful/signal"
	"github.com/deep-rent/graceful/testutil/sigtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminate_Available(t *testing.T) {
	assert.True(t, signal.Terminate.Available())
	assert.Equal(t, syscall.SIGTERM, signal.Terminate.Signal())
}

func TestHub_TerminateFires(t *testing.T) {
	n := sigtest.New()
	hub := signal.NewHub(signal.WithNotifier(n))

	h, err := hub.Install(signal.Terminate)
	require.NoError(t, err)
	defer h.Release()

	require.Equal(t, 1, n.Send(syscall.SIGTERM))
	requireFired(t, h)
}

func TestInstallTerminate_RealSignal(t *testing.T) {
	h, err := signal.InstallTerminate()
	require.NoError(t, err)
	defer h.Release()

	sigtest.Raise(t, syscall.SIGTERM)
	requireFired(t, h)
}

func TestInstallInterrupt_RealSignal(t *testing.T) {
	h := signal.MustInstall(signal.Interrupt)
	defer h.Release()

	sigtest.Raise(t, syscall.SIGINT)
	requireFired(t, h)
}
