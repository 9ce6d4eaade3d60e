// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kraklabs/llmcompare/pkg/llm"
)

// TestUserError_Error verifies the Error() method implementation.
func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{"with underlying error", &UserError{Message: "Cannot reach OpenAI", Err: fmt.Errorf("dial tcp: refused")}, "Cannot reach OpenAI: dial tcp: refused"},
		{"without underlying error", &UserError{Message: "Invalid input"}, "Invalid input"},
		{"empty message", &UserError{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("UserError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExitCodes_Uniqueness verifies no two categories share an exit code.
func TestExitCodes_Uniqueness(t *testing.T) {
	codes := map[int]string{}
	for name, code := range map[string]int{
		"ExitSuccess":  ExitSuccess,
		"ExitConfig":   ExitConfig,
		"ExitProvider": ExitProvider,
		"ExitNetwork":  ExitNetwork,
		"ExitInput":    ExitInput,
		"ExitNotFound": ExitNotFound,
		"ExitInternal": ExitInternal,
	} {
		if other, dup := codes[code]; dup {
			t.Errorf("%s and %s share exit code %d", name, other, code)
		}
		codes[code] = name
	}
}

// TestConstructors verifies each constructor sets the right exit code.
func TestConstructors(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name     string
		err      *UserError
		wantCode int
		wantWrap bool
	}{
		{"config", NewConfigError("m", "c", "f", cause), ExitConfig, true},
		{"provider", NewProviderError("m", "c", "f", cause), ExitProvider, true},
		{"network", NewNetworkError("m", "c", "f", cause), ExitNetwork, true},
		{"input", NewInputError("m", "c", "f"), ExitInput, false},
		{"notfound", NewNotFoundError("m", "c", "f"), ExitNotFound, false},
		{"internal", NewInternalError("m", "c", "f", cause), ExitInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantCode)
			}
			if got := errors.Is(tt.err, cause); got != tt.wantWrap {
				t.Errorf("errors.Is(cause) = %v, want %v", got, tt.wantWrap)
			}
			if tt.err.Message != "m" || tt.err.Cause != "c" || tt.err.Fix != "f" {
				t.Errorf("unexpected fields %+v", tt.err)
			}
		})
	}
}

// TestFromProvider verifies adapter errors map to the right category.
func TestFromProvider(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		wantFix  string
	}{
		{"missing key", llm.ErrNoAPIKey, ExitConfig, "OpenAI API key not set", "OPENAI_API_KEY"},
		{"auth", llm.NewAPIError("OpenAI", 401, "bad key", nil), ExitProvider, "OpenAI rejected the credentials", "OPENAI_API_KEY"},
		{"rate limit", llm.NewAPIError("OpenAI", 429, "slow down", nil), ExitProvider, "OpenAI rate limit exceeded", "max_parallel"},
		{"server", llm.NewAPIError("OpenAI", 500, "oops", nil), ExitProvider, "OpenAI request failed", ""},
		{"transport", fmt.Errorf("OpenAI request: %w", errors.New("connection refused")), ExitNetwork, "Cannot reach OpenAI", "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ue := FromProvider("OpenAI", "OPENAI_API_KEY", tt.err)
			if ue.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", ue.ExitCode, tt.wantCode)
			}
			if ue.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", ue.Message, tt.wantMsg)
			}
			if !strings.Contains(ue.Fix, tt.wantFix) {
				t.Errorf("Fix = %q, want it to mention %q", ue.Fix, tt.wantFix)
			}
			if !errors.Is(ue, tt.err) {
				t.Error("expected the adapter error to stay in the chain")
			}
		})
	}

	if FromProvider("OpenAI", "K", nil) != nil {
		t.Error("nil error must map to nil")
	}
	existing := NewInputError("bad", "", "")
	if FromProvider("OpenAI", "K", existing) != existing {
		t.Error("UserError must pass through untouched")
	}
}

// TestUserError_Format_NoColor verifies plain output layout.
func TestUserError_Format_NoColor(t *testing.T) {
	err := NewConfigError("No API keys configured", "No provider credential is set", "Export OPENAI_API_KEY", nil)
	got := err.Format(true)

	want := "Error: No API keys configured\nCause: No provider credential is set\nFix:   Export OPENAI_API_KEY\n"
	if got != want {
		t.Errorf("Format(true) = %q, want %q", got, want)
	}

	bare := NewInputError("Prompt is required", "", "").Format(true)
	if strings.Contains(bare, "Cause:") || strings.Contains(bare, "Fix:") {
		t.Errorf("empty sections must be omitted, got %q", bare)
	}
}

// TestUserError_ToJSON verifies JSON conversion.
func TestUserError_ToJSON(t *testing.T) {
	got := NewNotFoundError("Unknown model", "gpt-9 is not registered", "Run 'llmcompare models'").ToJSON()
	if got.Error != "Unknown model" || got.Cause != "gpt-9 is not registered" || got.ExitCode != ExitNotFound {
		t.Errorf("unexpected JSON %+v", got)
	}
}

// TestFatalError verifies exit codes without terminating the test binary.
func TestFatalError(t *testing.T) {
	var code int
	exit = func(c int) { code = c }
	defer func() { exit = osExit }()

	FatalError(nil, false)
	if code != 0 {
		t.Errorf("nil error must not exit, got %d", code)
	}

	FatalError(NewInputError("bad", "", ""), true)
	if code != ExitInput {
		t.Errorf("exit code = %d, want %d", code, ExitInput)
	}

	FatalError(fmt.Errorf("wrapped: %w", NewNetworkError("down", "", "", nil)), false)
	if code != ExitNetwork {
		t.Errorf("wrapped UserError exit code = %d, want %d", code, ExitNetwork)
	}

	FatalError(errors.New("generic"), false)
	if code != ExitInternal {
		t.Errorf("exit code = %d, want %d", code, ExitInternal)
	}
}
