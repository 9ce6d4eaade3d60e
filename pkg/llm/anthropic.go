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
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 1024
)

// anthropicProvider implements Provider for Anthropic's Claude API.
type anthropicProvider struct {
	baseURL string
	apiKey  string
	api     *jsonClient
}

func newAnthropicProvider(cfg ProviderConfig) *anthropicProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	p := &anthropicProvider{baseURL: baseURL, apiKey: cfg.APIKey}
	p.api = &jsonClient{
		provider:   ProviderAnthropic,
		client:     cfg.HTTPClient,
		maxRetries: cfg.MaxRetries,
		headers: func(r *http.Request) {
			r.Header.Set("x-api-key", p.apiKey)
			r.Header.Set("anthropic-version", anthropicVersion)
		},
	}
	return p
}

func (p *anthropicProvider) Name() string { return ProviderAnthropic }

type anthropicRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicModelList struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

// anthropicMaxPages bounds model listing when the API keeps reporting has_more.
const anthropicMaxPages = 50

func (p *anthropicProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	// The messages API takes the system prompt as a top-level field.
	system, messages := SplitSystem(req.Messages)

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = anthropicMaxTokens
	}

	start := time.Now()
	var result anthropicResponse
	err := p.api.do(ctx, http.MethodPost, p.baseURL+"/messages", anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		System:      system,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}, &result)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, NewAPIError(ProviderAnthropic, 0, "no text content in response", ErrEmptyResponse)
	}

	resp := &ChatResponse{
		Content:  sb.String(),
		Model:    orDefault(result.Model, req.Model),
		Duration: time.Since(start),
	}
	if result.Usage != nil {
		resp.Usage = &Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
			TotalTokens:      result.Usage.InputTokens + result.Usage.OutputTokens,
		}
	}
	return resp, nil
}

func (p *anthropicProvider) Models(ctx context.Context) ([]ModelInfo, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	var models []ModelInfo
	afterID := ""
	for page := 0; page < anthropicMaxPages; page++ {
		q := url.Values{"limit": {"100"}}
		if afterID != "" {
			q.Set("after_id", afterID)
		}

		var list anthropicModelList
		if err := p.api.do(ctx, http.MethodGet, p.baseURL+"/models?"+q.Encode(), nil, &list); err != nil {
			return nil, err
		}
		for _, m := range list.Data {
			name := m.DisplayName
			if name == "" {
				name = DisplayName(m.ID)
			}
			models = append(models, ModelInfo{
				ID:       m.ID,
				Name:     name,
				Endpoint: p.baseURL + "/messages",
				Provider: ProviderAnthropic,
			})
		}

		if !list.HasMore || list.LastID == "" || list.LastID == afterID {
			break
		}
		afterID = list.LastID
	}
	return models, nil
}
