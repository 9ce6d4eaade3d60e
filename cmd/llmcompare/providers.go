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
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/output"
	"github.com/kraklabs/llmcompare/internal/ui"
	"github.com/kraklabs/llmcompare/pkg/compare"
	"github.com/kraklabs/llmcompare/pkg/llm"
)

// ProviderStatus is one row of 'llmcompare providers'.
type ProviderStatus struct {
	Provider   string `json:"provider"`
	APIKeyEnv  string `json:"api_key_env"`
	Configured bool   `json:"configured"`
	Checked    bool   `json:"checked,omitempty"`
	Models     int    `json:"models,omitempty"`
	Error      string `json:"error,omitempty"`

	userErr *errors.UserError
}

// runProviders executes the 'providers' command. With --check each
// credentialed provider is asked for its model list to verify the key.
func runProviders(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("providers", flag.ExitOnError)
	check := fs.Bool("check", false, "Verify each configured key by listing models")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: llmcompare providers [options]

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	e, err := setup(configPath, globals, false)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	defer e.flush()

	statuses := providerStatuses(e.svc)
	if *check {
		stop := StartSpinner(NewProgressConfig(globals), "Checking keys...")
		checkProviders(context.Background(), statuses, e.svc.Backends(), os.Getenv, llm.NewProvider, e.cfg.Call.DiscoveryTimeout)
		stop()
	}

	if globals.JSON {
		if err := output.JSON(statuses); err != nil {
			errors.FatalError(err, true)
		}
		return
	}

	ui.Header("Providers")
	for _, st := range statuses {
		ui.KeyStatus(st.Provider, st.APIKeyEnv, st.Configured)
		switch {
		case st.userErr != nil:
			fmt.Fprint(ui.Out, indent(st.userErr.Format(globals.NoColor)))
		case st.Checked:
			fmt.Fprintf(ui.Out, "    %s models available\n", ui.CountText(st.Models))
		}
	}
}

func providerStatuses(svc *compare.Service) []ProviderStatus {
	keys := svc.KeyStatus()
	backends := svc.Backends()
	out := make([]ProviderStatus, 0, len(backends))
	for _, b := range backends {
		out = append(out, ProviderStatus{
			Provider:   b.Provider,
			APIKeyEnv:  b.APIKeyEnv,
			Configured: keys[b.Provider],
		})
	}
	return out
}

// checkProviders lists models for every configured row concurrently and
// records the outcome in place.
func checkProviders(
	ctx context.Context,
	statuses []ProviderStatus,
	backends []compare.Backend,
	getenv func(string) string,
	newProvider func(llm.ProviderConfig) (llm.Provider, error),
	timeout time.Duration,
) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var g errgroup.Group
	for i := range statuses {
		st := &statuses[i]
		if !st.Configured || i >= len(backends) {
			continue
		}
		b := backends[i]
		g.Go(func() error {
			st.Checked = true
			p, err := newProvider(llm.ProviderConfig{
				Type:    llm.TypeForProvider(b.Provider),
				APIKey:  strings.TrimSpace(getenv(b.APIKeyEnv)),
				BaseURL: b.BaseURL,
				Timeout: timeout,
			})
			if err == nil {
				cctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				var models []llm.ModelInfo
				models, err = p.Models(cctx)
				st.Models = len(models)
			}
			if err != nil {
				st.userErr = errors.FromProvider(b.Provider, b.APIKeyEnv, err)
				st.Error = st.userErr.Message
			}
			return nil
		})
	}
	_ = g.Wait()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
