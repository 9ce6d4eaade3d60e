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

// Package ui provides terminal output helpers for the llmcompare CLI.
//
// Colors respect the --no-color flag and the NO_COLOR environment variable,
// and are disabled automatically when stdout is not a TTY.
//
// Color usage guidelines:
//   - Red: Errors, failed model calls, missing keys
//   - Yellow: Warnings, static fallbacks
//   - Green: Success, configured keys
//   - Cyan: Info, counts and latencies
//   - Bold: Headers, model names
//   - Dim: Endpoints, env var names
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Pre-configured color instances for consistent CLI output.
var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// Out is where the message helpers write. Tests swap it for a buffer.
var Out io.Writer = color.Output

// InitColors disables colors when noColor is set. It never re-enables colors
// that fatih/color turned off for a non-TTY stdout.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Success prints a green message with a checkmark prefix.
func Success(msg string) {
	_, _ = fmt.Fprintln(Out, Green.Sprint("✓ "+msg))
}

// Successf prints a formatted green message with a checkmark prefix.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Warning prints a yellow message with a warning prefix.
func Warning(msg string) {
	_, _ = fmt.Fprintln(Out, Yellow.Sprint("⚠ "+msg))
}

// Warningf prints a formatted yellow message with a warning prefix.
func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}

// Error prints a red message with an X prefix.
func Error(msg string) {
	_, _ = fmt.Fprintln(Out, Red.Sprint("✗ "+msg))
}

// Errorf prints a formatted red message with an X prefix.
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Info prints a cyan message with an info prefix.
func Info(msg string) {
	_, _ = fmt.Fprintln(Out, Cyan.Sprint("ℹ "+msg))
}

// Infof prints a formatted cyan message with an info prefix.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Header prints a bold header with an underline separator.
//
//	Provider Keys
//	=============
func Header(text string) {
	_, _ = fmt.Fprintln(Out, Bold.Sprint(text))
	_, _ = fmt.Fprintln(Out, strings.Repeat("=", len([]rune(text))))
}

// SubHeader prints a bold sub-header without an underline.
func SubHeader(text string) {
	_, _ = fmt.Fprintln(Out, Bold.Sprint(text))
}

// Label returns a bold label for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns a dim string for less important text.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns a cyan count value.
func CountText(count int) string {
	return Cyan.Sprint(count)
}

// KeyStatus prints one line reporting whether a provider's credential is set.
//
//	✓ OpenAI     OPENAI_API_KEY
//	✗ Anthropic  ANTHROPIC_API_KEY (not set)
func KeyStatus(provider, env string, set bool) {
	name := fmt.Sprintf("%-10s", provider)
	if set {
		_, _ = fmt.Fprintf(Out, "%s %s %s\n", Green.Sprint("✓"), name, DimText(env))
		return
	}
	_, _ = fmt.Fprintf(Out, "%s %s %s %s\n", Red.Sprint("✗"), name, DimText(env), Yellow.Sprint("(not set)"))
}

// Latency formats a duration in milliseconds as "1.2s" or "850ms".
func Latency(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d >= time.Second {
		return Cyan.Sprintf("%.1fs", d.Seconds())
	}
	return Cyan.Sprintf("%dms", ms)
}

// StatusText colors a result status.
func StatusText(status string) string {
	if status == "success" {
		return Green.Sprint(status)
	}
	return Red.Sprint(status)
}
