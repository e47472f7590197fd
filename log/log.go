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

// Package log builds the slog.Logger used by hosts of the shutdown waiter,
// configured with functional options or straight from config.Log.
//
// # Usage
//
// The following example creates a logger at debug level that prints
// JSON-formatted records into a rotated file:
//
//	logger, closer := log.Open(
//		log.WithLevel("debug"),
//		log.WithFormat("json"),
//		log.WithFile("/var/log/app.log", 50),
//	)
//	defer closer.Close()
//
// # Conventions
//
// Stick to the following rules to keep log output consistent:
//
//   - Format attribute keys in lower camelCase.
//   - Prefer longer keys over abbreviations (e.g., "error" over "err").
//   - Capitalize the first letter of every log message.
//   - Do not end log messages with punctuation.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/deep-rent/graceful/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default configuration values for a new logger.
const (
	DefaultLevel      = slog.LevelInfo
	DefaultAddSource  = false
	DefaultFormat     = FormatText
	DefaultMaxBackups = 3
	DefaultMaxAge     = 28
)

// Format defines the log output format, such as JSON or plain text.
type Format uint8

const (
	FormatText Format = iota // Human-readable text format.
	FormatJSON               // JSON format, suitable for structured logging.
)

// String returns the lower-case string representation of the log format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

type settings struct {
	level     slog.Level
	addSource bool
	format    Format
	writer    io.Writer
	file      *lumberjack.Logger
}

// Option defines a function that modifies the logger configuration.
type Option func(*settings)

// WithLevel returns an Option that sets the minimum log level. It accepts
// either a slog.Level or a string recognized by ParseLevel. Invalid values
// leave the configured level unchanged.
func WithLevel(v any) Option {
	return func(s *settings) {
		switch t := v.(type) {
		case slog.Level:
			s.level = t
		case string:
			if level, err := ParseLevel(t); err == nil {
				s.level = level
			}
		}
	}
}

// WithFormat returns an Option that sets the log output format. It accepts
// either a Format or a string recognized by ParseFormat. Invalid values leave
// the configured format unchanged.
func WithFormat(v any) Option {
	return func(s *settings) {
		switch t := v.(type) {
		case Format:
			s.format = t
		case string:
			if format, err := ParseFormat(t); err == nil {
				s.format = format
			}
		}
	}
}

// WithAddSource returns an Option that includes the source code position in
// the log output.
func WithAddSource(add bool) Option {
	return func(s *settings) {
		s.addSource = add
	}
}

// WithWriter returns an Option that sets the output destination. A nil
// writer will be ignored.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.writer = w
			s.file = nil
		}
	}
}

// WithFile returns an Option that writes into the file at path, rotating it
// once it grows beyond maxSize megabytes. An empty path will be ignored, and
// a non-positive size selects the config.DefaultMaxSize.
func WithFile(path string, maxSize int) Option {
	return func(s *settings) {
		if path == "" {
			return
		}
		if maxSize <= 0 {
			maxSize = config.DefaultMaxSize
		}
		s.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAge,
		}
		s.writer = s.file
	}
}

// FromConfig translates the logging section of the configuration into
// options.
func FromConfig(c config.Log) []Option {
	return []Option{
		WithLevel(Lenient(c.Level)),
		WithFormat(c.Format),
		WithFile(c.File, c.MaxSize),
	}
}

// New creates a slog.Logger. By default, it logs at slog.LevelInfo in plain
// text to os.Stdout, without source information. Loggers writing into a file
// should be created with Open instead, so the file can be closed.
func New(opts ...Option) *slog.Logger {
	logger, _ := Open(opts...)
	return logger
}

// Open is like New but also returns a Closer that releases the underlying
// file, if any. Closing a logger that writes to a stream is a no-op.
func Open(opts ...Option) (*slog.Logger, io.Closer) {
	s := settings{
		level:     DefaultLevel,
		addSource: DefaultAddSource,
		format:    DefaultFormat,
		writer:    os.Stdout,
	}
	for _, opt := range opts {
		opt(&s)
	}

	o := &slog.HandlerOptions{
		Level:     s.level,
		AddSource: s.addSource,
	}

	var handler slog.Handler
	switch s.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(s.writer, o)
	default:
		handler = slog.NewTextHandler(s.writer, o)
	}

	var closer io.Closer = nopCloser{}
	if s.file != nil {
		closer = s.file
	}
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a string into a slog.Level. It can handle any string
// produced by slog.Level.MarshalText, ignoring case.
func ParseLevel(s string) (level slog.Level, err error) {
	if e := level.UnmarshalText([]byte(s)); e != nil {
		err = fmt.Errorf("invalid log level %q", s)
	}
	return
}

// Lenient is like ParseLevel but falls back to DefaultLevel for unrecognized
// or empty input.
func Lenient(s string) slog.Level {
	level, err := ParseLevel(s)
	if err != nil {
		return DefaultLevel
	}
	return level
}

// ParseFormat converts a string into a Format. It is case-insensitive and
// returns an error if the string is neither "text" nor "json".
func ParseFormat(s string) (format Format, err error) {
	switch strings.ToLower(s) {
	case "json":
		format = FormatJSON
	case "text":
		format = FormatText
	default:
		err = fmt.Errorf("invalid log format %q", s)
	}
	return
}
