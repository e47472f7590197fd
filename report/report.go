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

// Package report defines the optional reporting hook through which the
// shutdown waiter announces that a termination signal arrived.
//
// A Reporter accepts a severity and a message. Adapters are provided for
// log/slog, zap and logrus so that hosts can plug in the logger they already
// use. Without configuration, messages go to standard output.
//
// # Global configuration
//
// The package keeps a process-wide default reporter and minimum severity.
// Both follow a set-before-use convention: configure them once during
// startup. The minimum severity is read from the LOG_LEVEL environment
// variable on first use unless SetLevel was called earlier. Changing either
// value while a wait is suspended has no effect on that wait.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/deep-rent/graceful/config"
)

// Severity classifies a reported message. Its values coincide with the
// corresponding slog levels.
type Severity int

const (
	Debug Severity = Severity(slog.LevelDebug)
	Info  Severity = Severity(slog.LevelInfo)
	Warn  Severity = Severity(slog.LevelWarn)
	Error Severity = Severity(slog.LevelError)
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Level converts the severity into a slog.Level.
func (s Severity) Level() slog.Level { return slog.Level(s) }

// ParseSeverity converts a case-insensitive name ("debug", "info", "warn",
// "error") into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info":
		return Info, nil
	case "warn":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Info, fmt.Errorf("report: invalid severity %q", s)
	}
}

// Lenient is like ParseSeverity but falls back to Info for unrecognized or
// empty input.
func Lenient(s string) Severity {
	sev, err := ParseSeverity(s)
	if err != nil {
		return Info
	}
	return sev
}

// Reporter is the capability to emit a severity-tagged diagnostic message.
type Reporter interface {
	Report(severity Severity, msg string)
}

// Func adapts an ordinary function to the Reporter interface.
type Func func(severity Severity, msg string)

// Report calls f(severity, msg).
func (f Func) Report(severity Severity, msg string) { f(severity, msg) }

// Nop is a Reporter that discards every message.
var Nop Reporter = Func(func(Severity, string) {})

// Writer returns a Reporter that prints each message on its own line to w.
// Write errors are dropped. A nil writer yields Nop.
func Writer(w io.Writer) Reporter {
	if w == nil {
		return Nop
	}
	var mu sync.Mutex
	return Func(func(_ Severity, msg string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintln(w, msg)
	})
}

// Filter returns a Reporter that forwards only messages at or above the given
// threshold.
func Filter(r Reporter, threshold Severity) Reporter {
	if r == nil {
		return Nop
	}
	return Func(func(severity Severity, msg string) {
		if severity >= threshold {
			r.Report(severity, msg)
		}
	})
}

// Safe returns a Reporter that recovers from panics raised by r. A failing
// reporter loses the message but never affects the caller.
func Safe(r Reporter) Reporter {
	if r == nil {
		return Nop
	}
	return Func(func(severity Severity, msg string) {
		defer func() { _ = recover() }()
		r.Report(severity, msg)
	})
}

type holder struct{ r Reporter }

var (
	fallback = Writer(os.Stdout)
	current  atomic.Pointer[holder]

	levelOnce sync.Once
	level     atomic.Int64
)

// SetDefault installs r as the process-wide reporter. A nil value restores
// the fallback, which writes to standard output.
func SetDefault(r Reporter) {
	if r == nil {
		current.Store(nil)
		return
	}
	current.Store(&holder{r})
}

// SetLevel sets the process-wide minimum severity. Calling it before first
// use prevents the environment from being consulted.
func SetLevel(s Severity) {
	levelOnce.Do(func() {})
	level.Store(int64(s))
}

// Level returns the process-wide minimum severity. On first use, it is read
// from the environment; see FromEnv.
func Level() Severity {
	levelOnce.Do(func() {
		level.Store(int64(FromEnv()))
	})
	return Severity(level.Load())
}

// FromEnv reads the minimum severity from the LOG_LEVEL environment variable.
// Absent or unrecognized values yield Info. Other settings are not consulted,
// so an invalid SHUTDOWN_TIMEOUT or the like has no effect on the result.
func FromEnv() Severity {
	return Lenient(config.LoadLevel())
}

// Default returns a snapshot of the process-wide reporter, filtered by the
// current minimum severity.
func Default() Reporter {
	r := fallback
	if h := current.Load(); h != nil {
		r = h.r
	}
	return Filter(r, Level())
}
