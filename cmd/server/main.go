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

// Command server runs a minimal HTTP server that drains in-flight requests
// once a termination signal arrives.
//
// The listen address, log settings and drain budget are read from the
// environment; see package config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/deep-rent/graceful/app"
	"github.com/deep-rent/graceful/config"
	"github.com/deep-rent/graceful/log"
	"github.com/deep-rent/graceful/report"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer := log.Open(log.FromConfig(cfg.Log)...)
	defer func() { _ = closer.Close() }()

	report.SetLevel(report.Lenient(cfg.Log.Level))
	report.SetDefault(report.Slog(logger))

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	logger.Info("Server started", "address", ln.Addr().String())

	srv := &http.Server{
		Handler:           handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	err = app.Run(
		func(ctx context.Context) error {
			return serve(ctx, srv, ln, cfg.Shutdown.Timeout, logger)
		},
		app.WithLogger(logger),
		app.WithTimeout(cfg.Shutdown.Timeout),
	)
	if err != nil {
		logger.Error("Server error", "error", err)
		return err
	}
	logger.Info("Server has been shut down gracefully")
	return nil
}

func handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Hello, world"))
	})
	return mux
}

// serve runs srv on ln until ctx is canceled, then stops accepting new
// connections and waits up to grace for in-flight requests to finish.
func serve(
	ctx context.Context,
	srv *http.Server,
	ln net.Listener,
	grace time.Duration,
	logger *slog.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Draining connections", "timeout", grace)
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
