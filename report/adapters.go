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

package report

import (
	"context"
	"log/slog"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Slog returns a Reporter that logs through the given slog.Logger. A nil
// logger yields Nop.
func Slog(logger *slog.Logger) Reporter {
	if logger == nil {
		return Nop
	}
	return Func(func(severity Severity, msg string) {
		logger.Log(context.Background(), severity.Level(), msg)
	})
}

// Zap returns a Reporter that logs through the given zap.Logger. A nil
// logger yields Nop.
func Zap(logger *zap.Logger) Reporter {
	if logger == nil {
		return Nop
	}
	return Func(func(severity Severity, msg string) {
		switch {
		case severity >= Error:
			logger.Error(msg)
		case severity >= Warn:
			logger.Warn(msg)
		case severity >= Info:
			logger.Info(msg)
		default:
			logger.Debug(msg)
		}
	})
}

// Logrus returns a Reporter that logs through the given logrus logger or
// entry. A nil logger yields Nop.
func Logrus(logger logrus.FieldLogger) Reporter {
	if logger == nil {
		return Nop
	}
	return Func(func(severity Severity, msg string) {
		switch {
		case severity >= Error:
			logger.Error(msg)
		case severity >= Warn:
			logger.Warn(msg)
		case severity >= Info:
			logger.Info(msg)
		default:
			logger.Debug(msg)
		}
	})
}
