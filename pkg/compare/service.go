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

// Package compare fans one prompt out to several models and collects their
// replies side by side.
//
// A Service knows which provider backends exist and which environment
// variable holds each backend's credential. Model lists come from live
// discovery when a backend supports it, falling back to the static registry.
// Every call yields a normalized Result, so a failure in one model never
// affects the others.
package compare

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/llmcompare/pkg/llm"
	"github.com/kraklabs/llmcompare/pkg/registry"
)

var (
	// ErrEmptyPrompt is returned when the prompt is blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrNoModels is returned when a comparison names no models.
	ErrNoModels = errors.New("no models selected")
)

// Backend describes one provider the service may call.
type Backend struct {
	// Provider is the tag matched against llm.ModelInfo.Provider.
	Provider string

	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string

	// BaseURL overrides the vendor API root. Empty uses the adapter default.
	BaseURL string

	// Discover enables live model listing.
	Discover bool

	// MaxTokens overrides Options.MaxTokens for this provider when non-zero.
	MaxTokens int
}

// DefaultBackends returns the four supported vendors in display order.
func DefaultBackends() []Backend {
	return []Backend{
		{Provider: llm.ProviderOpenAI, APIKeyEnv: "OPENAI_API_KEY", Discover: true},
		{Provider: llm.ProviderAnthropic, APIKeyEnv: "ANTHROPIC_API_KEY", Discover: true, MaxTokens: 1024},
		{Provider: llm.ProviderGoogle, APIKeyEnv: "GEMINI_API_KEY", Discover: true},
		{Provider: llm.ProviderXAI, APIKeyEnv: "XAI_API_KEY", Discover: true},
	}
}

// Options configures a Service.
type Options struct {
	Backends []Backend
	Registry *registry.Registry

	Temperature      float64
	MaxTokens        int
	MaxRetries       int
	CallTimeout      time.Duration
	DiscoveryTimeout time.Duration
	MaxParallel      int

	Logger logr.Logger

	// NewProvider builds adapters. Defaults to llm.NewProvider.
	NewProvider func(llm.ProviderConfig) (llm.Provider, error)

	// Getenv reads credentials. Defaults to os.Getenv.
	Getenv func(string) string

	// Now stamps results. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the generation settings used by the web app:
// temperature 0.7, 1000 output tokens and a 60 second call timeout.
func DefaultOptions() Options {
	return Options{
		Backends:         DefaultBackends(),
		Registry:         registry.Default(),
		Temperature:      0.7,
		MaxTokens:        1000,
		MaxRetries:       2,
		CallTimeout:      60 * time.Second,
		DiscoveryTimeout: 10 * time.Second,
		MaxParallel:      8,
	}
}

// Service dispatches prompts to the configured providers.
type Service struct {
	opts   Options
	client *http.Client
	log    logr.Logger
}

// NewService creates a Service. Zero-valued options fall back to
// DefaultOptions, except Temperature which is used as given.
func NewService(opts Options) *Service {
	def := DefaultOptions()
	if opts.Backends == nil {
		opts.Backends = def.Backends
	}
	if opts.Registry == nil {
		opts.Registry = def.Registry
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = def.CallTimeout
	}
	if opts.DiscoveryTimeout <= 0 {
		opts.DiscoveryTimeout = def.DiscoveryTimeout
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = def.MaxParallel
	}
	if opts.NewProvider == nil {
		opts.NewProvider = llm.NewProvider
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	cmpMetrics.init()
	return &Service{
		opts:   opts,
		client: &http.Client{Timeout: opts.CallTimeout},
		log:    log.WithName("compare"),
	}
}

// Registry returns the static catalogue backing the service.
func (s *Service) Registry() *registry.Registry {
	return s.opts.Registry
}

// Backends returns a copy of the configured backends.
func (s *Service) Backends() []Backend {
	out := make([]Backend, len(s.opts.Backends))
	copy(out, s.opts.Backends)
	return out
}

// KeyStatus reports whether each backend's credential is set, keyed by
// provider tag.
func (s *Service) KeyStatus() map[string]bool {
	status := make(map[string]bool, len(s.opts.Backends))
	for _, b := range s.opts.Backends {
		status[b.Provider] = s.apiKey(b) != ""
	}
	return status
}

// HasCredentials reports whether any backend has a credential.
func (s *Service) HasCredentials() bool {
	for _, b := range s.opts.Backends {
		if s.apiKey(b) != "" {
			return true
		}
	}
	return false
}

// AvailableProviders returns the tags of credentialed backends in backend order.
func (s *Service) AvailableProviders() []string {
	var out []string
	for _, b := range s.opts.Backends {
		if s.apiKey(b) != "" {
			out = append(out, b.Provider)
		}
	}
	return out
}

// AvailableModels returns every model of every credentialed backend, keyed by
// id. Backends are queried concurrently; discovery failures are logged and
// replaced by the static list.
func (s *Service) AvailableModels(ctx context.Context) map[string]llm.ModelInfo {
	var (
		mu  sync.Mutex
		out = make(map[string]llm.ModelInfo)
	)

	var g errgroup.Group
	g.SetLimit(s.opts.MaxParallel)
	for _, b := range s.opts.Backends {
		key := s.apiKey(b)
		if key == "" {
			continue
		}
		g.Go(func() error {
			models := s.discover(ctx, b, key)
			mu.Lock()
			defer mu.Unlock()
			for _, m := range models {
				out[m.ID] = m
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ModelsByProvider returns the models of one provider keyed by id. The
// result is empty when the provider is unknown or has no credential.
func (s *Service) ModelsByProvider(ctx context.Context, provider string) map[string]llm.ModelInfo {
	out := make(map[string]llm.ModelInfo)
	b, ok := s.backend(provider)
	if !ok {
		return out
	}
	key := s.apiKey(b)
	if key == "" {
		return out
	}
	for _, m := range s.discover(ctx, b, key) {
		out[m.ID] = m
	}
	return out
}

// ResolveModel finds a model by id, checking the static registry before
// asking the credentialed providers. Models of providers without a backend
// do not resolve.
func (s *Service) ResolveModel(ctx context.Context, id string) (llm.ModelInfo, bool) {
	if m, ok := s.lookupEnabled(id); ok {
		return m, true
	}
	m, ok := s.AvailableModels(ctx)[id]
	return m, ok
}

// discover lists a backend's models, falling back to the registry.
func (s *Service) discover(ctx context.Context, b Backend, key string) []llm.ModelInfo {
	static := s.opts.Registry.ByProvider(b.Provider)
	if !b.Discover {
		return static
	}

	p, err := s.provider(b, key)
	if err != nil {
		s.log.Error(err, "build provider for discovery", "provider", b.Provider)
		recordFallback(b.Provider)
		return static
	}

	dctx, cancel := context.WithTimeout(ctx, s.opts.DiscoveryTimeout)
	defer cancel()

	models, live, err := llm.ModelsWithFallback(dctx, p, static)
	if !live {
		recordFallback(b.Provider)
		if err != nil {
			s.log.Error(err, "model discovery failed, using static list", "provider", b.Provider, "static", len(static))
		} else {
			s.log.V(1).Info("model discovery returned nothing, using static list", "provider", b.Provider)
		}
		return static
	}

	for i := range models {
		models[i].Provider = b.Provider
		models[i].APIKeyEnv = b.APIKeyEnv
		if reg, ok := s.opts.Registry.Lookup(models[i].ID); ok && reg.Provider == b.Provider {
			models[i].Name = reg.Name
			models[i].Endpoint = reg.Endpoint
		}
	}
	s.log.V(1).Info("discovered models", "provider", b.Provider, "count", len(models))
	return models
}

func (s *Service) provider(b Backend, key string) (llm.Provider, error) {
	return s.opts.NewProvider(llm.ProviderConfig{
		Type:       llm.TypeForProvider(b.Provider),
		APIKey:     key,
		BaseURL:    b.BaseURL,
		Timeout:    s.opts.CallTimeout,
		MaxRetries: s.opts.MaxRetries,
		HTTPClient: s.client,
	})
}

// lookupEnabled returns the registry entry for id when its provider has a
// backend.
func (s *Service) lookupEnabled(id string) (llm.ModelInfo, bool) {
	m, ok := s.opts.Registry.Lookup(id)
	if !ok {
		return llm.ModelInfo{}, false
	}
	if _, enabled := s.backend(m.Provider); !enabled {
		return llm.ModelInfo{}, false
	}
	return m, true
}

func (s *Service) backend(provider string) (Backend, bool) {
	for _, b := range s.opts.Backends {
		if strings.EqualFold(b.Provider, provider) {
			return b, true
		}
	}
	return Backend{}, false
}

func (s *Service) apiKey(b Backend) string {
	if b.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(s.opts.Getenv(b.APIKeyEnv))
}

// Request is a comparison request.
type Request struct {
	Prompt       string   `json:"prompt"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	ModelIDs     []string `json:"model_ids"`
}

// Comparison aggregates the results of one Request.
type Comparison struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Results      []Result  `json:"results"`
}

// Compare sends the prompt to every requested model concurrently. Results
// keep the order of first appearance in req.ModelIDs; duplicate and blank ids
// are dropped. Unknown ids yield an invalid_model result.
func (s *Service) Compare(ctx context.Context, req Request) (*Comparison, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	ids := dedupe(req.ModelIDs)
	if len(ids) == 0 {
		return nil, ErrNoModels
	}

	started := s.opts.Now()
	cmp := &Comparison{
		ID:           uuid.NewString(),
		Prompt:       prompt,
		SystemPrompt: strings.TrimSpace(req.SystemPrompt),
		StartedAt:    started,
		Results:      make([]Result, len(ids)),
	}

	models := s.resolveAll(ctx, ids)

	var g errgroup.Group
	g.SetLimit(s.opts.MaxParallel)
	for i, id := range ids {
		m, ok := models[id]
		if !ok {
			cmp.Results[i] = s.invalidModel(id)
			continue
		}
		g.Go(func() error {
			cmp.Results[i] = s.CallModel(ctx, m, prompt, cmp.SystemPrompt)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range cmp.Results {
		if r.Status == StatusSuccess {
			cmp.Succeeded++
		} else {
			cmp.Failed++
		}
	}
	cmp.DurationMS = time.Since(started).Milliseconds()
	recordComparison()

	s.log.Info("comparison finished",
		"id", cmp.ID,
		"models", len(ids),
		"succeeded", cmp.Succeeded,
		"failed", cmp.Failed,
		"duration_ms", cmp.DurationMS,
	)
	return cmp, nil
}

// resolveAll looks ids up in the registry and runs discovery at most once
// for the ones it does not know.
func (s *Service) resolveAll(ctx context.Context, ids []string) map[string]llm.ModelInfo {
	out := make(map[string]llm.ModelInfo, len(ids))
	var missing bool
	for _, id := range ids {
		if m, ok := s.lookupEnabled(id); ok {
			out[id] = m
		} else {
			missing = true
		}
	}
	if !missing {
		return out
	}
	available := s.AvailableModels(ctx)
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if m, ok := available[id]; ok {
			out[id] = m
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
