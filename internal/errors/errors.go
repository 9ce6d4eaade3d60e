// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides user-facing errors for the llmcompare CLI.
//
// A UserError answers three questions for the person at the terminal: what
// went wrong, why, and what to do about it. Each error also carries the exit
// code the process should terminate with.
//
//	err := errors.NewConfigError(
//	    "No API keys configured",
//	    "None of OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, XAI_API_KEY is set",
//	    "Export at least one key and run 'llmcompare serve' again",
//	    nil,
//	)
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Error: No API keys configured
//	// Cause: None of OPENAI_API_KEY, ... is set
//	// Fix:   Export at least one key and run 'llmcompare serve' again
//
// # Exit Codes
//
//   - ExitSuccess (0): Successful execution
//   - ExitConfig (1): Missing credentials or an invalid config file
//   - ExitProvider (2): A vendor API rejected the request
//   - ExitNetwork (3): A vendor API could not be reached
//   - ExitInput (4): Invalid arguments
//   - ExitNotFound (6): Unknown model or provider
//   - ExitInternal (10): Bugs
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/llmcompare/pkg/llm"
)

// Exit codes for different error categories.
const (
	ExitSuccess  = 0
	ExitConfig   = 1
	ExitProvider = 2
	ExitNetwork  = 3
	ExitInput    = 4
	ExitNotFound = 6

	// ExitInternal signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
type UserError struct {
	// Message describes what went wrong.
	Message string

	// Cause explains why it happened.
	Cause string

	// Fix suggests how to resolve it.
	Fix string

	// ExitCode is used when the process exits because of this error.
	ExitCode int

	// Err is the wrapped error, if any.
	Err error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewProviderError creates a vendor API error with exit code ExitProvider.
func NewProviderError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitProvider, msg, cause, fix, err)
}

// NewNetworkError creates a connectivity error with exit code ExitNetwork.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors never wrap an underlying error.
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

// NewNotFoundError creates a not-found error with exit code ExitNotFound.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, nil)
}

// NewInternalError creates an internal error with exit code ExitInternal.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// FromProvider converts an adapter error into a UserError. keyEnv names the
// credential variable mentioned in the fix for authentication failures.
func FromProvider(provider, keyEnv string, err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue
	}
	if stderrors.Is(err, llm.ErrNoAPIKey) {
		return NewConfigError(
			fmt.Sprintf("%s API key not set", provider),
			fmt.Sprintf("%s is empty", keyEnv),
			fmt.Sprintf("Export %s and try again", keyEnv),
			err,
		)
	}

	var apiErr *llm.APIError
	if !stderrors.As(err, &apiErr) {
		return NewNetworkError(
			fmt.Sprintf("Cannot reach %s", provider),
			err.Error(),
			"Check your network connection and try again",
			err,
		)
	}
	switch {
	case apiErr.IsAuthError():
		return NewProviderError(
			fmt.Sprintf("%s rejected the credentials", provider),
			fmt.Sprintf("HTTP %d: %s", apiErr.StatusCode, apiErr.Message),
			fmt.Sprintf("Check the value of %s", keyEnv),
			err,
		)
	case apiErr.IsRateLimited():
		return NewProviderError(
			fmt.Sprintf("%s rate limit exceeded", provider),
			apiErr.Message,
			"Wait a moment and retry, or lower call.max_parallel",
			err,
		)
	}
	return NewProviderError(
		fmt.Sprintf("%s request failed", provider),
		apiErr.Error(),
		"",
		err,
	)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns the error for terminal display. Empty Cause or Fix lines are
// omitted. Colors are disabled by noColor or the NO_COLOR environment variable.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// exit is replaced in tests.
var (
	osExit = os.Exit
	exit   = osExit
)

// FatalError prints err to stderr and exits with its code. Errors that are
// not a UserError exit with ExitInternal.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	var ue *UserError
	if stderrors.As(err, &ue) {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		exit(ue.ExitCode)
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exit(ExitInternal)
}
