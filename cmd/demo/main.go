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

// Command demo starts, waits for a termination signal and exits.
//
// Press Ctrl+C (or send SIGTERM on Unix) to stop it. Set LOG_LEVEL=error to
// suppress the shutdown announcement.
package main

import (
	"fmt"
	"os"

	"github.com/deep-rent/graceful/config"
	"github.com/deep-rent/graceful/log"
	"github.com/deep-rent/graceful/report"
	"github.com/deep-rent/graceful/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, closer := log.Open(log.FromConfig(cfg.Log)...)
	defer func() { _ = closer.Close() }()

	report.SetLevel(report.Lenient(cfg.Log.Level))
	report.SetDefault(report.Slog(logger))

	logger.Info("App started, waiting for shutdown signal")
	shutdown.Wait()
	logger.Info("Exiting gracefully")
}
