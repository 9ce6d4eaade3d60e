// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured logger shared by the server and
// the CLI: a logr front end backed by zap.
package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and destinations.
type Config struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" (default) or "console".
	Format string `yaml:"format"`

	// File, when set, receives a copy of every entry.
	File string `yaml:"file"`

	// NoStdout drops the stdout destination. Entries still go to File.
	NoStdout bool `yaml:"-"`

	// Stderr sends console entries to stderr instead of stdout.
	Stderr bool `yaml:"-"`
}

// New builds a logger. The returned flush function syncs buffered entries
// and should be deferred by the caller.
func New(cfg Config) (logr.Logger, func(), error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	atom, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = atom
	zc.DisableStacktrace = true
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch strings.ToLower(cfg.Format) {
	case "", "json":
	case "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return logr.Discard(), func() {}, fmt.Errorf("invalid log format %q (supported: json, console)", cfg.Format)
	}

	zc.OutputPaths = nil
	switch {
	case cfg.NoStdout:
	case cfg.Stderr:
		zc.OutputPaths = append(zc.OutputPaths, "stderr")
	default:
		zc.OutputPaths = append(zc.OutputPaths, "stdout")
	}
	if cfg.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, cfg.File)
	}
	if len(zc.OutputPaths) == 0 {
		return logr.Discard(), func() {}, nil
	}

	z, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("build logger: %w", err)
	}
	return zapr.NewLogger(z), func() { _ = z.Sync() }, nil
}
