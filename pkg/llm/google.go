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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultGoogleEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// geminiCall is one generateContent invocation.
type geminiCall struct {
	Model       string
	System      string
	History     []*genai.Content
	Prompt      string
	Temperature float32
	MaxTokens   int32
}

// geminiClient is the subset of the Gemini SDK the adapter needs.
type geminiClient interface {
	Generate(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error)
	ListModels(ctx context.Context) ([]*genai.ModelInfo, error)
}

// googleProvider implements Provider for Google Gemini.
type googleProvider struct {
	apiKey string
	client geminiClient
}

func newGoogleProvider(cfg ProviderConfig) *googleProvider {
	return &googleProvider{
		apiKey: cfg.APIKey,
		client: &sdkGeminiClient{apiKey: cfg.APIKey, endpoint: cfg.BaseURL},
	}
}

func (p *googleProvider) Name() string { return ProviderGoogle }

func (p *googleProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	system, messages := SplitSystem(req.Messages)
	if len(messages) == 0 {
		return nil, fmt.Errorf("google chat: no user message")
	}
	last := messages[len(messages)-1]
	history := make([]*genai.Content, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	start := time.Now()
	result, err := p.client.Generate(ctx, geminiCall{
		Model:       req.Model,
		System:      system,
		History:     history,
		Prompt:      last.Content,
		Temperature: float32(req.Temperature),
		MaxTokens:   int32(req.MaxTokens),
	})
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	text := candidateText(result)
	if text == "" {
		return nil, NewAPIError(ProviderGoogle, 0, "no text in response", ErrEmptyResponse)
	}

	resp := &ChatResponse{
		Content:  text,
		Model:    req.Model,
		Duration: time.Since(start),
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = &Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *googleProvider) Models(ctx context.Context) ([]ModelInfo, error) {
	if p.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	infos, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	models := make([]ModelInfo, 0, len(infos))
	for _, info := range infos {
		if !supportsGenerateContent(info.SupportedGenerationMethods) {
			continue
		}
		id := strings.TrimPrefix(info.Name, "models/")
		name := info.DisplayName
		if name == "" {
			name = DisplayName(id)
		}
		models = append(models, ModelInfo{
			ID:       id,
			Name:     name,
			Endpoint: fmt.Sprintf("%s/%s:generateContent", defaultGoogleEndpoint, id),
			Provider: ProviderGoogle,
		})
	}
	return models, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func supportsGenerateContent(methods []string) bool {
	for _, m := range methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}

func wrapGoogleError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return NewAPIError(ProviderGoogle, 0, fmt.Sprintf("HTTP %d: %s", gerr.Code, gerr.Message), err)
	}
	return NewAPIError(ProviderGoogle, 0, "request failed", err)
}

// sdkGeminiClient talks to Gemini through generative-ai-go. A client is
// opened per call since the SDK holds connections until Close.
type sdkGeminiClient struct {
	apiKey   string
	endpoint string
}

func (c *sdkGeminiClient) open(ctx context.Context) (*genai.Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

func (c *sdkGeminiClient) Generate(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error) {
	client, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	model := client.GenerativeModel(call.Model)
	if call.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(call.System)}}
	}
	if call.Temperature > 0 {
		model.SetTemperature(call.Temperature)
	}
	if call.MaxTokens > 0 {
		model.SetMaxOutputTokens(call.MaxTokens)
	}

	if len(call.History) == 0 {
		return model.GenerateContent(ctx, genai.Text(call.Prompt))
	}
	session := model.StartChat()
	session.History = call.History
	return session.SendMessage(ctx, genai.Text(call.Prompt))
}

func (c *sdkGeminiClient) ListModels(ctx context.Context) ([]*genai.ModelInfo, error) {
	client, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	var models []*genai.ModelInfo
	iter := client.ListModels(ctx)
	for {
		info, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		models = append(models, info)
	}
	return models, nil
}
