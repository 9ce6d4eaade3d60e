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
	"net/http"
	"testing"
	"time"

	llmtest "github.com/kraklabs/llmcompare/internal/testing"
)

func init() {
	retryBackoff = time.Millisecond
}

func newTestProvider(t *testing.T, typ, baseURL string, retries int) Provider {
	t.Helper()
	p, err := NewProvider(ProviderConfig{
		Type:       typ,
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	})
	if err != nil {
		t.Fatalf("NewProvider(%s) error = %v", typ, err)
	}
	return p
}

func TestOpenAIProvider_Chat_WithMockServer(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /chat/completions", http.StatusOK, llmtest.OpenAIChatBody("Hello from GPT"))

	p := newTestProvider(t, "openai", vendor.URL(), 0)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:       "gpt-4o",
		Endpoint:    "https://api.openai.com/v1/chat/completions",
		Messages:    BuildChatMessages("Be brief.", "Hi"),
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "Hello from GPT" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}

	req, ok := vendor.LastRequest("POST /chat/completions")
	if !ok {
		t.Fatal("no request recorded")
	}
	if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("unexpected Authorization header %q", got)
	}
	if req.Body["max_tokens"] != float64(1000) {
		t.Errorf("expected max_tokens 1000, got %v", req.Body["max_tokens"])
	}
	msgs, _ := req.Body["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("expected system and user messages, got %d", len(msgs))
	}
}

func TestOpenAIProvider_Responses_WithMockServer(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /responses", http.StatusOK, llmtest.OpenAIResponsesBody("Hello ", "world"))

	p := newTestProvider(t, "openai", vendor.URL(), 0)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:     "gpt-5",
		Endpoint:  "https://api.openai.com/v1/responses/",
		Messages:  BuildChatMessages("sys", "Hi"),
		MaxTokens: 1000,
	})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "Hello world" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.PromptTokens != 8 || resp.Usage.CompletionTokens != 4 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}

	req, _ := vendor.LastRequest("POST /responses")
	if req.Body["max_output_tokens"] != float64(1000) {
		t.Errorf("expected max_output_tokens, got %v", req.Body)
	}
	input, _ := req.Body["input"].([]any)
	if len(input) != 2 {
		t.Fatalf("expected 2 input items, got %d", len(input))
	}
	first := input[0].(map[string]any)
	part := first["content"].([]any)[0].(map[string]any)
	if part["type"] != "input_text" || part["text"] != "sys" {
		t.Errorf("unexpected input part %v", part)
	}
}

func TestOpenAIProvider_Responses_FallbackToFirstPart(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /responses", http.StatusOK,
		`{"output":[{"content":[{"type":"refusal","text":"cannot help"}]}]}`)

	p := newTestProvider(t, "openai", vendor.URL(), 0)
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:    "gpt-5",
		Endpoint: "/v1/responses",
		Messages: BuildChatMessages("", "Hi"),
	})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "cannot help" {
		t.Errorf("expected first part text, got %q", resp.Content)
	}
}

func TestOpenAIProvider_Responses_EmptyOutput(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /responses", http.StatusOK, `{"output":[]}`)

	p := newTestProvider(t, "openai", vendor.URL(), 0)
	_, err := p.Chat(context.Background(), ChatRequest{
		Model:    "gpt-5",
		Endpoint: "responses",
		Messages: BuildChatMessages("", "Hi"),
	})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestOpenAIProvider_Chat_APIError(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /chat/completions", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)

	p := newTestProvider(t, "openai", vendor.URL(), 3)
	_, err := p.Chat(context.Background(), ChatRequest{Model: "gpt-4o", Messages: BuildChatMessages("", "Hi")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if !apiErr.IsAuthError() || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	// Auth failures are not retried.
	if n := vendor.Calls("POST /chat/completions"); n != 1 {
		t.Errorf("expected 1 call, got %d", n)
	}
}

func TestOpenAIProvider_Chat_RetriesTransient(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /chat/completions", http.StatusTooManyRequests, `{"error":"slow down"}`)
	vendor.Reply("POST /chat/completions", http.StatusBadGateway, `bad gateway`)
	vendor.Reply("POST /chat/completions", http.StatusOK, llmtest.OpenAIChatBody("finally"))

	p := newTestProvider(t, "openai", vendor.URL(), 2)
	resp, err := p.Chat(context.Background(), ChatRequest{Model: "gpt-4o", Messages: BuildChatMessages("", "Hi")})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "finally" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if n := vendor.Calls("POST /chat/completions"); n != 3 {
		t.Errorf("expected 3 calls, got %d", n)
	}
}

func TestOpenAIProvider_Chat_RetriesExhausted(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /chat/completions", http.StatusServiceUnavailable, `overloaded`)

	p := newTestProvider(t, "openai", vendor.URL(), 1)
	_, err := p.Chat(context.Background(), ChatRequest{Model: "gpt-4o", Messages: BuildChatMessages("", "Hi")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
	if apiErr.Message != "overloaded" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if n := vendor.Calls("POST /chat/completions"); n != 2 {
		t.Errorf("expected 2 calls, got %d", n)
	}
}

func TestOpenAIProvider_Models_FiltersChatModels(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("GET /models", http.StatusOK, llmtest.ModelListBody(
		"gpt-4o", "text-embedding-3-small", "o1-mini", "whisper-1", "dall-e-3", "chatgpt-4o-latest", "gpt-4o-audio-preview", "babbage-002",
	))

	p := newTestProvider(t, "openai", vendor.URL(), 0)
	models, err := p.Models(context.Background())
	if err != nil {
		t.Fatalf("Models error = %v", err)
	}

	var ids []string
	for _, m := range models {
		ids = append(ids, m.ID)
		if m.Provider != ProviderOpenAI {
			t.Errorf("unexpected provider %q", m.Provider)
		}
		if m.Endpoint != vendor.URL()+"/chat/completions" {
			t.Errorf("unexpected endpoint %q", m.Endpoint)
		}
	}
	want := []string{"chatgpt-4o-latest", "gpt-4o", "o1-mini"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestXAIProvider_ChatAndModels(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /chat/completions", http.StatusOK, llmtest.OpenAIChatBody("grok says hi"))
	vendor.Reply("GET /models", http.StatusOK, llmtest.ModelListBody("grok-4", "grok-2-image-1212", "grok-3-mini"))

	p := newTestProvider(t, "xai", vendor.URL(), 0)
	resp, err := p.Chat(context.Background(), ChatRequest{Model: "grok-4", Messages: BuildChatMessages("", "Hi")})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "grok says hi" {
		t.Errorf("unexpected content %q", resp.Content)
	}

	models, err := p.Models(context.Background())
	if err != nil {
		t.Fatalf("Models error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 grok chat models, got %+v", models)
	}
	if models[0].ID != "grok-3-mini" || models[0].Name != "Grok 3 Mini" || models[0].Provider != ProviderXAI {
		t.Errorf("unexpected model %+v", models[0])
	}
}

func TestOpenAIProvider_ContextCancelled(t *testing.T) {
	vendor := llmtest.StartFakeVendor(t)
	vendor.Reply("POST /chat/completions", http.StatusServiceUnavailable, `overloaded`)

	p := newTestProvider(t, "openai", vendor.URL(), 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Chat(ctx, ChatRequest{Model: "gpt-4o", Messages: BuildChatMessages("", "Hi")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
