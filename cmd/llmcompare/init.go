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
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/llmcompare/internal/config"
	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/ui"
)

// runInit executes the 'init' command, writing a default llmcompare.yaml
// to the --config path or the current directory.
func runInit(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: llmcompare init [options]

Creates llmcompare.yaml with the built-in defaults. API keys are never
written to the file; they are read from the environment.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath
	}
	if err := writeInitConfig(path, *force); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if globals.Quiet {
		return
	}
	ui.Successf("Created %s", path)
	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "Next steps:")
	fmt.Fprintln(ui.Out, "  export OPENAI_API_KEY=...   Set at least one provider key")
	fmt.Fprintln(ui.Out, "  llmcompare providers        Check which keys are configured")
	fmt.Fprintln(ui.Out, "  llmcompare serve            Start the API on :5000")
}

func writeInitConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewInputError(
			"Configuration already exists",
			path+" is present",
			"Use --force to overwrite it",
		)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return errors.NewInternalError(
			"Cannot write configuration",
			err.Error(),
			"Check that the directory is writable",
			err,
		)
	}
	return nil
}
