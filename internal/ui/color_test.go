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

package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// capture redirects Out and disables colors for the duration of the test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	origOut, origNoColor := Out, color.NoColor
	t.Cleanup(func() {
		Out = origOut
		color.NoColor = origNoColor
	})

	var buf bytes.Buffer
	Out = &buf
	color.NoColor = true
	return &buf
}

func TestInitColors(t *testing.T) {
	original := color.NoColor
	defer func() { color.NoColor = original }()

	color.NoColor = false
	InitColors(false)
	if color.NoColor {
		t.Error("InitColors(false) must not disable colors")
	}

	InitColors(true)
	if !color.NoColor {
		t.Error("InitColors(true) must disable colors")
	}

	InitColors(false)
	if !color.NoColor {
		t.Error("InitColors(false) must not re-enable colors")
	}
}

func TestMessageFunctions(t *testing.T) {
	buf := capture(t)

	Success("done")
	Warningf("%d fallbacks", 2)
	Error("failed")
	Infof("calling %s", "gpt-4o")

	want := "✓ done\n⚠ 2 fallbacks\n✗ failed\nℹ calling gpt-4o\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestHeader(t *testing.T) {
	buf := capture(t)
	Header("Provider Keys")
	if buf.String() != "Provider Keys\n=============\n" {
		t.Errorf("unexpected header %q", buf.String())
	}
}

func TestKeyStatus(t *testing.T) {
	buf := capture(t)

	KeyStatus("OpenAI", "OPENAI_API_KEY", true)
	KeyStatus("Anthropic", "ANTHROPIC_API_KEY", false)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "✓ OpenAI") || strings.Contains(lines[0], "not set") {
		t.Errorf("unexpected set line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "✗ Anthropic") || !strings.HasSuffix(lines[1], "(not set)") {
		t.Errorf("unexpected unset line %q", lines[1])
	}
}

func TestInlineFormatters(t *testing.T) {
	capture(t)

	tests := []struct {
		got, want string
	}{
		{Label("Model:"), "Model:"},
		{DimText("https://api.x.ai/v1"), "https://api.x.ai/v1"},
		{CountText(17), "17"},
		{Latency(850), "850ms"},
		{Latency(1500), "1.5s"},
		{StatusText("success"), "success"},
		{StatusText("error"), "error"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
