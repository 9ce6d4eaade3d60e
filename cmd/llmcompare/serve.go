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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/server"
	"github.com/kraklabs/llmcompare/internal/ui"
	"github.com/kraklabs/llmcompare/pkg/compare"
)

// runServe executes the 'serve' command: it reports which provider keys are
// set and runs the HTTP API until SIGINT or SIGTERM.
func runServe(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (overrides server.addr)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: llmcompare serve [options]

Description:
  Start the HTTP API. At least one provider key must be set in the
  environment, otherwise serve exits with a configuration error.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  llmcompare serve
  llmcompare serve --addr 127.0.0.1:8080
  PORT=8000 llmcompare serve
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	e, err := setup(configPath, globals, true)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer e.flush()

	if *addr != "" {
		e.cfg.Server.Addr = *addr
	}

	if !globals.Quiet {
		ui.Header("LLM Model Comparison Tool")
		fmt.Fprintln(ui.Out)
		printKeyStatus(e.svc)
		fmt.Fprintln(ui.Out)
	}
	if err := requireCredentials(e.svc); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	srv := server.New(server.Options{
		Service:      e.svc,
		Logger:       e.log,
		Addr:         e.cfg.Server.Addr,
		ReadTimeout:  e.cfg.Server.ReadTimeout,
		WriteTimeout: e.cfg.Server.WriteTimeout,
		IdleTimeout:  e.cfg.Server.IdleTimeout,
		CORSOrigins:  e.cfg.Server.CORSOrigins,
		MaxBodyBytes: e.cfg.Server.MaxBodyBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !globals.Quiet {
		ui.Infof("Listening on %s (Ctrl+C to stop)", e.cfg.Server.Addr)
	}
	if err := srv.Run(ctx); err != nil {
		errors.FatalError(errors.NewNetworkError(
			"Server stopped unexpectedly",
			err.Error(),
			"Check that the address is free or pick another with --addr",
			err,
		), globals.JSON)
	}
}

// printKeyStatus prints one line per provider backend.
func printKeyStatus(svc *compare.Service) {
	ui.SubHeader("API Key Status:")
	status := svc.KeyStatus()
	for _, b := range svc.Backends() {
		ui.KeyStatus(b.Provider, b.APIKeyEnv, status[b.Provider])
	}
}

func requireCredentials(svc *compare.Service) error {
	if svc.HasCredentials() {
		return nil
	}
	var envs []string
	for _, b := range svc.Backends() {
		envs = append(envs, b.APIKeyEnv)
	}
	return errors.NewConfigError(
		"No API keys configured",
		"None of the provider credential variables is set",
		"Export at least one of: "+strings.Join(envs, ", "),
		nil,
	)
}
