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

// Package main implements the llmcompare CLI: a web server and terminal
// client that send one prompt to several LLM providers and show the answers
// side by side.
//
// Usage:
//
//	llmcompare serve                    Start the HTTP API
//	llmcompare compare -m gpt-4o <p>    Compare models from the terminal
//	llmcompare models [--offline]       List available models
//	llmcompare providers [--check]      Show provider key status
//	llmcompare init                     Write llmcompare.yaml
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/llmcompare/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the flags shared by every command.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
	Verbose int
}

func main() {
	fs := flag.NewFlagSet("llmcompare", flag.ExitOnError)
	fs.SetInterspersed(false)

	var (
		globals     GlobalFlags
		showVersion = fs.Bool("version", false, "Show version and exit")
		configPath  = fs.String("config", "", "Path to llmcompare.yaml (default: ./llmcompare.yaml)")
	)
	fs.BoolVar(&globals.JSON, "json", false, "Machine-readable JSON output")
	fs.BoolVarP(&globals.Quiet, "quiet", "q", false, "Suppress progress output")
	fs.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	fs.CountVarP(&globals.Verbose, "verbose", "v", "Log to stderr (-vv for debug)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `llmcompare - compare LLM providers side by side

Sends the same prompt to OpenAI, Anthropic, Google Gemini and xAI and
returns the answers together with latency and token usage.

Usage:
  llmcompare [global options] <command> [options]

Commands:
  serve       Start the HTTP API
  compare     Send a prompt to one or more models
  models      List available models
  providers   Show which provider keys are configured
  init        Write a default llmcompare.yaml
  version     Show version information

Global Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment Variables:
  OPENAI_API_KEY      OpenAI credential
  ANTHROPIC_API_KEY   Anthropic credential
  GEMINI_API_KEY      Google Gemini credential
  XAI_API_KEY         xAI credential
  PORT                Listen port for serve (overridden by LLMCOMPARE_ADDR)

For detailed command help: llmcompare <command> --help
`)
	}

	_ = fs.Parse(os.Args[1:])

	if globals.JSON {
		globals.Quiet = true
	}
	ui.InitColors(globals.NoColor)

	if *showVersion {
		printVersion(os.Stdout)
		return
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]
	switch command {
	case "serve":
		runServe(cmdArgs, *configPath, globals)
	case "compare":
		runCompare(cmdArgs, *configPath, globals)
	case "models":
		runModels(cmdArgs, *configPath, globals)
	case "providers":
		runProviders(cmdArgs, *configPath, globals)
	case "init":
		runInit(cmdArgs, *configPath, globals)
	case "version":
		printVersion(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		fs.Usage()
		os.Exit(1)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "llmcompare version %s\n", version)
	fmt.Fprintf(w, "commit: %s\n", commit)
	fmt.Fprintf(w, "built: %s\n", date)
}
