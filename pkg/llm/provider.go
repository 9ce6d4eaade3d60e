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

package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Provider tags as exposed to API clients and stored in ModelInfo.Provider.
const (
	ProviderOpenAI    = "OpenAI"
	ProviderAnthropic = "Anthropic"
	ProviderGoogle    = "Google"
	ProviderXAI       = "xAI"
	ProviderMock      = "Mock"
)

// Provider defines the interface every vendor adapter implements.
type Provider interface {
	// Name returns the provider tag (e.g. "OpenAI").
	Name() string

	// Chat sends the messages to the model and returns its normalized reply.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Models lists the models currently offered by the vendor.
	Models(ctx context.Context) ([]ModelInfo, error)
}

// ModelInfo describes a model that can be selected for comparison.
type ModelInfo struct {
	ID        string `json:"id" yaml:"-"`
	Name      string `json:"name" yaml:"name"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	APIKeyEnv string `json:"api_key_env" yaml:"api_key_env"`
	Provider  string `json:"provider" yaml:"provider"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest represents a single chat completion request.
type ChatRequest struct {
	Model string `json:"model"`

	// Endpoint is the model's registry endpoint. Requests always go to the
	// adapter's base URL; OpenAI uses the Responses API when it ends in "responses".
	Endpoint string `json:"endpoint,omitempty"`

	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Usage holds token accounting normalized across vendors.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse contains the normalized chat completion response.
type ChatResponse struct {
	Content  string        `json:"content"`
	Model    string        `json:"model"`
	Usage    *Usage        `json:"usage,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ProviderConfig holds configuration for creating providers.
type ProviderConfig struct {
	// Provider type: "openai", "anthropic", "google", "xai", "mock"
	Type string `json:"type"`

	// BaseURL for the API endpoint
	BaseURL string `json:"base_url,omitempty"`

	// APIKey for the vendor
	APIKey string `json:"api_key,omitempty"`

	// Timeout for API requests
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxRetries for transient failures (429 and 5xx)
	MaxRetries int `json:"max_retries,omitempty"`

	// HTTPClient replaces the default client when set.
	HTTPClient *http.Client `json:"-"`
}

// NewProvider creates a Provider based on configuration.
// Supported types: "openai", "anthropic", "google", "xai", "mock"
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = newHTTPClient(cfg.Timeout)
	}

	switch strings.ToLower(cfg.Type) {
	case "openai":
		return newOpenAIProvider(cfg), nil
	case "xai", "grok":
		return newXAIProvider(cfg), nil
	case "anthropic", "claude":
		return newAnthropicProvider(cfg), nil
	case "google", "gemini":
		return newGoogleProvider(cfg), nil
	case "mock", "test":
		return &MockProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s (supported: openai, anthropic, google, xai, mock)", cfg.Type)
	}
}

// TypeForProvider maps a provider tag to the adapter type accepted by NewProvider.
func TypeForProvider(tag string) string {
	switch strings.ToLower(tag) {
	case "openai":
		return "openai"
	case "anthropic":
		return "anthropic"
	case "google", "gemini":
		return "google"
	case "xai", "grok":
		return "xai"
	case "mock":
		return "mock"
	}
	return ""
}

// =============================================================================
// MOCK PROVIDER (for testing)
// =============================================================================

// MockProvider is a test provider that returns predictable responses.
type MockProvider struct {
	Tag        string
	ChatFunc   func(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	ModelsFunc func(ctx context.Context) ([]ModelInfo, error)
}

func (p *MockProvider) Name() string {
	if p.Tag != "" {
		return p.Tag
	}
	return ProviderMock
}

func (p *MockProvider) Models(ctx context.Context) ([]ModelInfo, error) {
	if p.ModelsFunc != nil {
		return p.ModelsFunc(ctx)
	}
	return []ModelInfo{{
		ID:        "mock-model",
		Name:      "Mock Model",
		Endpoint:  "mock://chat",
		APIKeyEnv: "MOCK_API_KEY",
		Provider:  p.Name(),
	}}, nil
}

func (p *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.ChatFunc != nil {
		return p.ChatFunc(ctx, req)
	}
	lastMsg := ""
	if len(req.Messages) > 0 {
		lastMsg = req.Messages[len(req.Messages)-1].Content
	}
	return &ChatResponse{
		Content: fmt.Sprintf("[mock] Response to: %.50s", lastMsg),
		Model:   req.Model,
		Usage: &Usage{
			PromptTokens:     len(lastMsg) / 4,
			CompletionTokens: 20,
			TotalTokens:      len(lastMsg)/4 + 20,
		},
		Duration: 10 * time.Millisecond,
	}, nil
}
