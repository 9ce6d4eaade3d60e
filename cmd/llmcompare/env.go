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

package main

import (
	"github.com/go-logr/logr"

	"github.com/kraklabs/llmcompare/internal/config"
	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/logging"
	"github.com/kraklabs/llmcompare/pkg/compare"
)

// env is the loaded configuration plus the logger and service built from it.
type env struct {
	cfg   *config.Config
	log   logr.Logger
	svc   *compare.Service
	flush func()
}

// setup loads configuration and builds the comparison service. Terminal
// commands log to stderr only with -v; serve always logs to stdout.
func setup(configPath string, globals GlobalFlags, serving bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	switch {
	case globals.Verbose > 1:
		logCfg.Level = "debug"
	case globals.Verbose == 1 && !serving:
		logCfg.Level = "info"
	}
	if !serving {
		logCfg.Format = "console"
		logCfg.Stderr = true
		logCfg.NoStdout = globals.Verbose == 0
	}

	log, flush, err := logging.New(logCfg)
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot initialize logging",
			err.Error(),
			"Check log.level and log.file in llmcompare.yaml",
			err,
		)
	}

	opts := cfg.ServiceOptions()
	opts.Logger = log
	return &env{
		cfg:   cfg,
		log:   log,
		svc:   compare.NewService(opts),
		flush: flush,
	}, nil
}
