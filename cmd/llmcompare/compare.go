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
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/output"
	"github.com/kraklabs/llmcompare/internal/ui"
	"github.com/kraklabs/llmcompare/pkg/compare"
)

// runCompare executes the 'compare' command: a one-shot comparison printed to
// the terminal.
//
// Flags:
//   - -m, --model: Model id, repeatable or comma separated (required)
//   - -s, --system: System prompt
//   - --timeout: Overall deadline for the comparison
//
// The prompt is the remaining arguments, or stdin when it is "-" or absent
// and stdin is not a terminal.
func runCompare(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	models := fs.StringSliceP("model", "m", nil, "Model id (repeatable, or comma separated)")
	system := fs.StringP("system", "s", "", "System prompt")
	timeout := fs.Duration("timeout", 3*time.Minute, "Overall deadline for the comparison")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: llmcompare compare [options] <prompt>

Description:
  Send one prompt to every selected model concurrently and print the
  answers side by side. Run 'llmcompare models' to list model ids.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  llmcompare compare -m gpt-4o -m claude-3-5-haiku-20241022 "Explain goroutines"
  llmcompare compare -m gpt-4o,grok-3 -s "Answer in one line" "What is Go?"
  echo "Summarize this" | llmcompare compare -m gemini-2.5-flash -
  llmcompare --json compare -m o1 "2+2?"
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	prompt, err := readPrompt(fs.Args(), os.Stdin, !isatty.IsTerminal(os.Stdin.Fd()))
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if len(*models) == 0 {
		errors.FatalError(errors.NewInputError(
			"No model selected",
			"compare needs at least one --model",
			"Pass -m <id>; run 'llmcompare models' to list ids",
		), globals.JSON)
	}

	e, err := setup(configPath, globals, false)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer e.flush()

	if err := requireCredentials(e.svc); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stop := StartSpinner(NewProgressConfig(globals), fmt.Sprintf("Asking %d model(s)...", len(*models)))
	cmp, err := e.svc.Compare(ctx, compare.Request{
		Prompt:       prompt,
		SystemPrompt: *system,
		ModelIDs:     *models,
	})
	stop()
	if err != nil {
		errors.FatalError(errors.NewInputError("Cannot run comparison", err.Error(), ""), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(cmp); err != nil {
			errors.FatalError(err, true)
		}
	} else {
		printComparison(cmp)
	}

	if cmp.Succeeded == 0 {
		errors.FatalError(errors.NewProviderError(
			"Every model call failed",
			fmt.Sprintf("%d of %d calls returned an error", cmp.Failed, len(cmp.Results)),
			"Check the messages above; 'llmcompare providers --check' verifies the keys",
			nil,
		), globals.JSON)
	}
}

// readPrompt joins args into the prompt. With no args or a single "-", the
// prompt is read from stdin when piped.
func readPrompt(args []string, stdin io.Reader, piped bool) (string, error) {
	var prompt string
	switch {
	case len(args) == 1 && args[0] == "-", len(args) == 0 && piped:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.NewInputError("Cannot read prompt", err.Error(), "")
		}
		prompt = string(data)
	default:
		prompt = strings.Join(args, " ")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.NewInputError(
			"Prompt is required",
			"no prompt given on the command line or stdin",
			`Run: llmcompare compare -m gpt-4o "your prompt"`,
		)
	}
	return prompt, nil
}

// printComparison renders cmp for the terminal.
func printComparison(cmp *compare.Comparison) {
	ui.Header("Comparison")
	fmt.Fprintf(ui.Out, "%s %s\n", ui.Label("Prompt:"), cmp.Prompt)
	if cmp.SystemPrompt != "" {
		fmt.Fprintf(ui.Out, "%s %s\n", ui.Label("System:"), cmp.SystemPrompt)
	}
	fmt.Fprintln(ui.Out)

	for _, r := range cmp.Results {
		provider := r.Provider
		if provider == "" {
			provider = "unknown"
		}
		ui.SubHeader(fmt.Sprintf("%s (%s)", r.ModelName, provider))
		line := fmt.Sprintf("  %s  %s", ui.StatusText(r.Status), ui.Latency(r.LatencyMS))
		if r.ErrorType != "" {
			line += "  " + ui.DimText(r.ErrorType)
		}
		if r.Usage != nil {
			line += "  " + ui.DimText(fmt.Sprintf("tokens %d/%d", r.Usage.PromptTokens, r.Usage.CompletionTokens))
		}
		fmt.Fprintln(ui.Out, line)
		fmt.Fprintln(ui.Out)
		for _, l := range strings.Split(strings.TrimRight(r.Response, "\n"), "\n") {
			fmt.Fprintf(ui.Out, "  %s\n", l)
		}
		fmt.Fprintln(ui.Out)
	}

	fmt.Fprintf(ui.Out, "%s succeeded, %s failed in %s\n",
		ui.CountText(cmp.Succeeded), ui.CountText(cmp.Failed), ui.Latency(cmp.DurationMS))
}
