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

// Package config loads llmcompare settings from YAML and the environment.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables, then command-line flags applied by the caller.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/llmcompare/internal/errors"
	"github.com/kraklabs/llmcompare/internal/logging"
	"github.com/kraklabs/llmcompare/pkg/compare"
	"github.com/kraklabs/llmcompare/pkg/llm"
	"github.com/kraklabs/llmcompare/pkg/registry"
)

// DefaultPath is read when no --config flag is given. It is optional.
const DefaultPath = "llmcompare.yaml"

// Config is the root of llmcompare.yaml.
type Config struct {
	Server    ServerConfig             `yaml:"server"`
	Call      CallConfig               `yaml:"call"`
	Providers []ProviderConfig         `yaml:"providers"`
	Models    map[string]llm.ModelInfo `yaml:"models,omitempty"`
	Log       logging.Config           `yaml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// CallConfig holds the generation settings applied to every model call.
type CallConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	DiscoveryTimeout time.Duration `yaml:"discovery_timeout"`
	MaxParallel      int           `yaml:"max_parallel"`
	MaxRetries       int           `yaml:"max_retries"`
	Temperature      float64       `yaml:"temperature"`
	MaxTokens        int           `yaml:"max_tokens"`
}

// ProviderConfig enables and tunes one vendor backend.
type ProviderConfig struct {
	Name      string `yaml:"name"`
	Enabled   *bool  `yaml:"enabled,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Discover  *bool  `yaml:"discover,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
}

// IsEnabled reports whether the backend should be used. Unset means enabled.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Addr:         ":5000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 150 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 1 << 20,
		},
		Call: CallConfig{
			Timeout:          60 * time.Second,
			DiscoveryTimeout: 10 * time.Second,
			MaxParallel:      8,
			MaxRetries:       2,
			Temperature:      0.7,
			MaxTokens:        1000,
		},
		Log: logging.Config{Level: "info", Format: "json"},
	}
	for _, b := range compare.DefaultBackends() {
		cfg.Providers = append(cfg.Providers, providerFromBackend(b))
	}
	return cfg
}

func providerFromBackend(b compare.Backend) ProviderConfig {
	discover := b.Discover
	return ProviderConfig{
		Name:      b.Provider,
		APIKeyEnv: b.APIKeyEnv,
		Discover:  &discover,
		MaxTokens: b.MaxTokens,
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path reads DefaultPath if it exists.
func Load(path string) (*Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigError(
				"Cannot parse configuration",
				fmt.Sprintf("%s is not valid YAML: %v", path, err),
				"Fix the syntax or regenerate it with 'llmcompare init --force'",
				err,
			)
		}
	case stderrors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, errors.NewConfigError(
			"Cannot read configuration",
			err.Error(),
			"Check the --config path or run 'llmcompare init'",
			err,
		)
	}

	cfg.fillProviderDefaults()
	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillProviderDefaults completes known providers that the file lists only
// partially.
func (c *Config) fillProviderDefaults() {
	known := make(map[string]compare.Backend)
	for _, b := range compare.DefaultBackends() {
		known[strings.ToLower(b.Provider)] = b
	}
	for i := range c.Providers {
		p := &c.Providers[i]
		b, ok := known[strings.ToLower(p.Name)]
		if !ok {
			continue
		}
		p.Name = b.Provider
		if p.APIKeyEnv == "" {
			p.APIKeyEnv = b.APIKeyEnv
		}
		if p.MaxTokens == 0 {
			p.MaxTokens = b.MaxTokens
		}
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := getenv("LLMCOMPARE_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := getenv("LLMCOMPARE_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if file := getenv("LLMCOMPARE_LOG_FILE"); file != "" {
		c.Log.File = file
	}
}

// Validate checks the configuration and returns a *errors.UserError.
func (c *Config) Validate() error {
	fail := func(cause, fix string) error {
		return errors.NewConfigError("Invalid configuration", cause, fix, nil)
	}

	if c.Server.Addr == "" {
		return fail("server.addr is empty", "Set server.addr, e.g. \":5000\"")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fail("server.max_body_bytes must be positive", "Remove the setting to use the 1 MiB default")
	}
	if c.Call.Timeout <= 0 {
		return fail("call.timeout must be positive", "Use a duration such as \"60s\"")
	}
	if c.Call.MaxParallel < 1 {
		return fail("call.max_parallel must be at least 1", "Set call.max_parallel: 8")
	}
	if c.Call.MaxRetries < 0 {
		return fail("call.max_retries cannot be negative", "Set call.max_retries: 0 to disable retries")
	}
	if c.Call.Temperature < 0 || c.Call.Temperature > 2 {
		return fail(fmt.Sprintf("call.temperature %.2f is outside [0, 2]", c.Call.Temperature), "Use 0.7 for balanced output")
	}
	if c.Call.MaxTokens < 1 {
		return fail("call.max_tokens must be at least 1", "Set call.max_tokens: 1000")
	}

	seen := make(map[string]bool)
	for _, p := range c.Providers {
		if t := llm.TypeForProvider(p.Name); t == "" || t == "mock" {
			return fail(fmt.Sprintf("unknown provider %q", p.Name), "Use one of: OpenAI, Anthropic, Google, xAI")
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fail(fmt.Sprintf("provider %q is listed twice", p.Name), "Merge the two entries")
		}
		seen[key] = true
		if p.APIKeyEnv == "" {
			return fail(fmt.Sprintf("provider %q has no api_key_env", p.Name), "Name the environment variable holding its key")
		}
	}

	for id, m := range c.Models {
		m.ID = id
		if err := registry.ValidateModel(m); err != nil {
			return fail(err.Error(), "Give every entry under models: name, endpoint, api_key_env and provider")
		}
	}
	return nil
}

// Registry returns the built-in registry merged with the models section.
func (c *Config) Registry() *registry.Registry {
	reg := registry.Default()
	reg.Merge(c.Models)
	return reg
}

// Backends returns the enabled providers in file order. The result is never
// nil, so a file that disables every provider yields no backends.
func (c *Config) Backends() []compare.Backend {
	out := make([]compare.Backend, 0, len(c.Providers))
	for _, p := range c.Providers {
		if !p.IsEnabled() {
			continue
		}
		out = append(out, compare.Backend{
			Provider:  p.Name,
			APIKeyEnv: p.APIKeyEnv,
			BaseURL:   p.BaseURL,
			Discover:  p.Discover == nil || *p.Discover,
			MaxTokens: p.MaxTokens,
		})
	}
	return out
}

// ServiceOptions maps the configuration onto compare.Options.
func (c *Config) ServiceOptions() compare.Options {
	return compare.Options{
		Backends:         c.Backends(),
		Registry:         c.Registry(),
		Temperature:      c.Call.Temperature,
		MaxTokens:        c.Call.MaxTokens,
		MaxRetries:       c.Call.MaxRetries,
		CallTimeout:      c.Call.Timeout,
		DiscoveryTimeout: c.Call.DiscoveryTimeout,
		MaxParallel:      c.Call.MaxParallel,
	}
}

// Save writes cfg as YAML to path with a short header comment.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# llmcompare configuration\n# API keys are read from the environment variables named under providers.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
