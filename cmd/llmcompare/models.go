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
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/output"
	"github.com/kraklabs/llmcompare/internal/ui"
	"github.com/kraklabs/llmcompare/pkg/llm"
)

// runModels executes the 'models' command.
//
// Without --offline it lists the models of every credentialed provider,
// using live discovery with the built-in list as fallback. With --offline
// it prints the static registry and needs no keys.
func runModels(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	provider := fs.StringP("provider", "p", "", "Only list models of this provider")
	offline := fs.Bool("offline", false, "List the static registry without contacting providers")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: llmcompare models [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  llmcompare models
  llmcompare models --provider anthropic
  llmcompare models --offline --json
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	e, err := setup(configPath, globals, false)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer e.flush()

	var models map[string]llm.ModelInfo
	switch {
	case *offline:
		models = e.cfg.Registry().All()
		if *provider != "" {
			models = make(map[string]llm.ModelInfo)
			for _, m := range e.cfg.Registry().ByProvider(*provider) {
				models[m.ID] = m
			}
		}
	default:
		if err := requireCredentials(e.svc); err != nil {
			errors.FatalError(err, globals.JSON)
		}
		stop := StartSpinner(NewProgressConfig(globals), "Discovering models...")
		ctx := context.Background()
		if *provider != "" {
			models = e.svc.ModelsByProvider(ctx, *provider)
		} else {
			models = e.svc.AvailableModels(ctx)
		}
		stop()
	}

	if len(models) == 0 && *provider != "" {
		errors.FatalError(errors.NewNotFoundError(
			fmt.Sprintf("No models for provider %q", *provider),
			"the provider is unknown or its key is not set",
			"Run 'llmcompare providers' to see configured providers",
		), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(models); err != nil {
			errors.FatalError(err, true)
		}
		return
	}
	printModels(sortModels(models, e.cfg.Registry().Providers()))
}

// sortModels orders models by provider rank, then id. Providers missing from
// order sort last, alphabetically.
func sortModels(models map[string]llm.ModelInfo, order []string) []llm.ModelInfo {
	rank := func(p string) int {
		if i := slices.Index(order, p); i >= 0 {
			return i
		}
		return len(order)
	}

	out := make([]llm.ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b llm.ModelInfo) int {
		return cmp.Or(
			cmp.Compare(rank(a.Provider), rank(b.Provider)),
			cmp.Compare(a.Provider, b.Provider),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

func printModels(models []llm.ModelInfo) {
	var current string
	for _, m := range models {
		if m.Provider != current {
			if current != "" {
				fmt.Fprintln(ui.Out)
			}
			current = m.Provider
			ui.SubHeader(current)
		}
		fmt.Fprintf(ui.Out, "  %-32s %s\n", m.ID, ui.DimText(m.Name))
	}
	fmt.Fprintf(ui.Out, "\n%s models\n", ui.CountText(len(models)))
}
