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

// Package registry holds the static catalogue of models known to llmcompare.
//
// The catalogue is the fallback used whenever a provider's live model
// listing is unavailable. Every entry carries the display name, the vendor
// endpoint, the environment variable holding the credential, and the
// provider tag that selects the adapter.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kraklabs/llmcompare/pkg/llm"
)

const (
	openAIChat    = "https://api.openai.com/v1/chat/completions"
	anthropicMsgs = "https://api.anthropic.com/v1/messages"
	geminiBase    = "https://generativelanguage.googleapis.com/v1beta/models/"
	xaiChat       = "https://api.x.ai/v1/chat/completions"
)

// Registry maps model ids to their descriptors. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	models    map[string]llm.ModelInfo
	providers []string
}

// New returns a registry seeded with models. Later entries with the same id
// replace earlier ones.
func New(models ...llm.ModelInfo) *Registry {
	r := &Registry{models: make(map[string]llm.ModelInfo, len(models))}
	for _, m := range models {
		r.Add(m)
	}
	return r
}

// Default returns the built-in catalogue.
func Default() *Registry {
	return New(builtin()...)
}

func builtin() []llm.ModelInfo {
	openai := func(id, name string) llm.ModelInfo {
		return llm.ModelInfo{ID: id, Name: name, Endpoint: openAIChat, APIKeyEnv: "OPENAI_API_KEY", Provider: llm.ProviderOpenAI}
	}
	anthropic := func(id, name string) llm.ModelInfo {
		return llm.ModelInfo{ID: id, Name: name, Endpoint: anthropicMsgs, APIKeyEnv: "ANTHROPIC_API_KEY", Provider: llm.ProviderAnthropic}
	}
	google := func(id, name string) llm.ModelInfo {
		return llm.ModelInfo{ID: id, Name: name, Endpoint: geminiBase + id + ":generateContent", APIKeyEnv: "GEMINI_API_KEY", Provider: llm.ProviderGoogle}
	}
	xai := func(id, name string) llm.ModelInfo {
		return llm.ModelInfo{ID: id, Name: name, Endpoint: xaiChat, APIKeyEnv: "XAI_API_KEY", Provider: llm.ProviderXAI}
	}

	return []llm.ModelInfo{
		openai("gpt-4o", "GPT-4o"),
		openai("gpt-4o-mini", "GPT-4o Mini"),
		openai("gpt-4-turbo", "GPT-4 Turbo"),
		openai("gpt-3.5-turbo", "GPT-3.5 Turbo"),
		openai("o1", "o1"),
		openai("o1-mini", "o1 Mini"),

		anthropic("claude-3-5-sonnet-20241022", "Claude 3.5 Sonnet"),
		anthropic("claude-3-5-haiku-20241022", "Claude 3.5 Haiku"),
		anthropic("claude-3-opus-20240229", "Claude 3 Opus"),
		anthropic("claude-3-sonnet-20240229", "Claude 3 Sonnet"),
		anthropic("claude-3-haiku-20240307", "Claude 3 Haiku"),

		google("gemini-2.5-pro", "Gemini 2.5 Pro"),
		google("gemini-2.5-flash", "Gemini 2.5 Flash"),
		google("gemini-3-pro-preview", "Gemini 3 Pro (Preview)"),

		xai("grok-4", "Grok 4"),
		xai("grok-3", "Grok 3"),
		xai("grok-3-mini", "Grok 3 Mini"),
	}
}

// Add inserts or replaces a model.
func (r *Registry) Add(m llm.ModelInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.models[m.ID] = m
	for _, p := range r.providers {
		if strings.EqualFold(p, m.Provider) {
			return
		}
	}
	r.providers = append(r.providers, m.Provider)
}

// Merge adds or replaces every model in overrides.
func (r *Registry) Merge(overrides map[string]llm.ModelInfo) {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m := overrides[id]
		m.ID = id
		r.Add(m)
	}
}

// Lookup returns the model registered under id.
func (r *Registry) Lookup(id string) (llm.ModelInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	return m, ok
}

// ByProvider returns the models of one provider sorted by id. The provider
// tag is matched case-insensitively.
func (r *Registry) ByProvider(provider string) []llm.ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []llm.ModelInfo
	for _, m := range r.models {
		if strings.EqualFold(m.Provider, provider) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns a copy of the catalogue keyed by id.
func (r *Registry) All() map[string]llm.ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]llm.ModelInfo, len(r.models))
	for id, m := range r.models {
		out[id] = m
	}
	return out
}

// Providers returns the provider tags in the order they were first added.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Validate reports the first entry missing a required field.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := ValidateModel(r.models[id]); err != nil {
			return err
		}
	}
	return nil
}

// ValidateModel checks that m carries every field a call needs.
func ValidateModel(m llm.ModelInfo) error {
	var missing []string
	if m.ID == "" {
		missing = append(missing, "id")
	}
	if m.Name == "" {
		missing = append(missing, "name")
	}
	if m.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if m.APIKeyEnv == "" {
		missing = append(missing, "api_key_env")
	}
	if m.Provider == "" {
		missing = append(missing, "provider")
	}
	if len(missing) > 0 {
		return fmt.Errorf("model %q: missing %s", m.ID, strings.Join(missing, ", "))
	}
	if llm.TypeForProvider(m.Provider) == "" {
		return fmt.Errorf("model %q: unknown provider %q", m.ID, m.Provider)
	}
	return nil
}
