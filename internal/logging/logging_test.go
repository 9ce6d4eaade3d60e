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

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llmcompare.log")

	log, flush, err := New(Config{Level: "debug", File: path, NoStdout: true})
	require.NoError(t, err)

	log.Info("comparison finished", "models", 3)
	log.V(1).Info("discovered models", "provider", "OpenAI")
	flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"msg":"comparison finished"`)
	assert.Contains(t, lines[0], `"models":3`)
	assert.Contains(t, lines[1], `"provider":"OpenAI"`)
}

func TestNew_LevelFiltersVerbosity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.log")

	log, flush, err := New(Config{Level: "INFO", File: path, NoStdout: true})
	require.NoError(t, err)

	log.V(1).Info("hidden")
	log.Info("shown")
	flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	log, flush, err := New(Config{Format: "console", File: path, NoStdout: true})
	require.NoError(t, err)
	log.Info("hello")
	flush()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.NotContains(t, string(data), `"msg"`)
}

func TestNew_InvalidSettings(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	_, _, err = New(Config{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestNew_NoDestinations(t *testing.T) {
	log, flush, err := New(Config{NoStdout: true})
	require.NoError(t, err)
	log.Info("dropped")
	flush()
}
