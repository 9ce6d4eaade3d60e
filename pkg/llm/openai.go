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
	"sort"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultXAIBaseURL    = "https://api.x.ai/v1"
)

// openAIProvider speaks the OpenAI wire format. xAI reuses it with its own
// base URL and model filter.
type openAIProvider struct {
	tag     string
	baseURL string
	apiKey  string
	api     *jsonClient
	keep    func(id string) bool
}

func newOpenAIProvider(cfg ProviderConfig) *openAIProvider {
	return newOpenAICompatible(cfg, ProviderOpenAI, defaultOpenAIBaseURL, isOpenAIChatModel)
}

func newXAIProvider(cfg ProviderConfig) *openAIProvider {
	return newOpenAICompatible(cfg, ProviderXAI, defaultXAIBaseURL, isXAIChatModel)
}

func newOpenAICompatible(cfg ProviderConfig, tag, base string, keep func(string) bool) *openAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = base
	}
	p := &openAIProvider{
		tag:     tag,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		keep:    keep,
	}
	p.api = &jsonClient{
		provider:   tag,
		client:     cfg.HTTPClient,
		maxRetries: cfg.MaxRetries,
		headers: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+p.apiKey)
		},
	}
	return p
}

func (p *openAIProvider) Name() string { return p.tag }

// OpenAI chat completions wire types.
type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Responses API wire types.
type responsesContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responsesInputItem struct {
	Role    string                 `json:"role"`
	Content []responsesContentPart `json:"content"`
}

type responsesRequest struct {
	Model           string               `json:"model"`
	Input           []responsesInputItem `json:"input"`
	Temperature     float64              `json:"temperature"`
	MaxOutputTokens int                  `json:"max_output_tokens,omitempty"`
}

type responsesResponse struct {
	Model  string `json:"model"`
	Output []struct {
		Content []responsesContentPart `json:"content"`
	} `json:"output"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIModelList struct {
	Data []struct {
		ID      string `json:"id"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

func (p *openAIProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if isResponsesEndpoint(req.Endpoint) {
		return p.respond(ctx, req)
	}

	start := time.Now()
	var result openAIChatResponse
	err := p.api.do(ctx, http.MethodPost, p.baseURL+"/chat/completions", openAIChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, NewAPIError(p.tag, 0, "no choices in response", ErrEmptyResponse)
	}

	resp := &ChatResponse{
		Content:  result.Choices[0].Message.Content,
		Model:    orDefault(result.Model, req.Model),
		Duration: time.Since(start),
	}
	if result.Usage != nil {
		resp.Usage = &Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
	}
	return resp, nil
}

// respond calls the Responses API used by the newest OpenAI models.
func (p *openAIProvider) respond(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	input := make([]responsesInputItem, 0, len(req.Messages))
	for _, m := range req.Messages {
		input = append(input, responsesInputItem{
			Role:    m.Role,
			Content: []responsesContentPart{{Type: "input_text", Text: m.Content}},
		})
	}

	start := time.Now()
	var result responsesResponse
	err := p.api.do(ctx, http.MethodPost, p.baseURL+"/responses", responsesRequest{
		Model:           req.Model,
		Input:           input,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Output) == 0 {
		return nil, NewAPIError(p.tag, 0, "no output returned from responses API", ErrEmptyResponse)
	}
	parts := result.Output[0].Content
	if len(parts) == 0 {
		return nil, NewAPIError(p.tag, 0, "responses output missing content", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range parts {
		if part.Type == "output_text" || part.Type == "text" {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()
	if text == "" {
		text = parts[0].Text
	}

	resp := &ChatResponse{
		Content:  text,
		Model:    orDefault(result.Model, req.Model),
		Duration: time.Since(start),
	}
	if result.Usage != nil {
		resp.Usage = &Usage{
			PromptTokens:     result.Usage.InputTokens,
			CompletionTokens: result.Usage.OutputTokens,
			TotalTokens:      result.Usage.TotalTokens,
		}
	}
	return resp, nil
}

func (p *openAIProvider) Models(ctx context.Context) ([]ModelInfo, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	var list openAIModelList
	if err := p.api.do(ctx, http.MethodGet, p.baseURL+"/models", nil, &list); err != nil {
		return nil, err
	}

	models := make([]ModelInfo, 0, len(list.Data))
	for _, m := range list.Data {
		if !p.keep(m.ID) {
			continue
		}
		models = append(models, ModelInfo{
			ID:       m.ID,
			Name:     DisplayName(m.ID),
			Endpoint: p.baseURL + "/chat/completions",
			Provider: p.tag,
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func isResponsesEndpoint(endpoint string) bool {
	return strings.HasSuffix(strings.TrimRight(endpoint, "/"), "responses")
}

var openAIChatPrefixes = []string{"gpt-", "o1", "o3", "o4", "chatgpt-"}

// isOpenAIChatModel keeps ids usable with chat completions, dropping
// embeddings, audio, image and moderation models.
func isOpenAIChatModel(id string) bool {
	for _, skip := range []string{"embedding", "whisper", "tts", "dall-e", "moderation", "audio", "realtime", "transcribe", "image"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	for _, prefix := range openAIChatPrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

func isXAIChatModel(id string) bool {
	return strings.HasPrefix(id, "grok") && !strings.Contains(id, "image")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
