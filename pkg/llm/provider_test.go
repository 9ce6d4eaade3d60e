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
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewProvider_Types(t *testing.T) {
	tests := []struct {
		typ  string
		name string
	}{
		{"openai", ProviderOpenAI},
		{"anthropic", ProviderAnthropic},
		{"claude", ProviderAnthropic},
		{"google", ProviderGoogle},
		{"gemini", ProviderGoogle},
		{"xai", ProviderXAI},
		{"Grok", ProviderXAI},
		{"mock", ProviderMock},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			p, err := NewProvider(ProviderConfig{Type: tt.typ})
			if err != nil {
				t.Fatalf("NewProvider(%s) error = %v", tt.typ, err)
			}
			if p.Name() != tt.name {
				t.Errorf("expected name %q, got %q", tt.name, p.Name())
			}
		})
	}
}

func TestNewProvider_UnknownType(t *testing.T) {
	_, err := NewProvider(ProviderConfig{Type: "ollama"})
	if err == nil {
		t.Fatal("expected error for unknown provider type")
	}
	if !strings.Contains(err.Error(), "unknown LLM provider type") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	for _, typ := range []string{"openai", "anthropic", "google", "xai"} {
		p, err := NewProvider(ProviderConfig{Type: typ})
		if err != nil {
			t.Fatalf("NewProvider(%s) error = %v", typ, err)
		}
		_, err = p.Chat(context.Background(), ChatRequest{Messages: BuildChatMessages("", "hi")})
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("%s: expected ErrNoAPIKey, got %v", typ, err)
		}
		if _, err := p.Models(context.Background()); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("%s: Models expected ErrNoAPIKey, got %v", typ, err)
		}
	}
}

func TestTypeForProvider(t *testing.T) {
	tests := map[string]string{
		"OpenAI":    "openai",
		"Anthropic": "anthropic",
		"Google":    "google",
		"xAI":       "xai",
		"Cohere":    "",
	}
	for tag, want := range tests {
		if got := TypeForProvider(tag); got != want {
			t.Errorf("TypeForProvider(%q) = %q, want %q", tag, got, want)
		}
	}
}

func TestMockProvider_Chat(t *testing.T) {
	p := &MockProvider{}

	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:    "mock-model",
		Messages: []Message{{Role: "user", Content: "Hello!"}},
	})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if !strings.Contains(resp.Content, "[mock]") {
		t.Errorf("expected mock response, got %q", resp.Content)
	}
	if resp.Model != "mock-model" {
		t.Errorf("expected model 'mock-model', got %q", resp.Model)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens == 0 {
		t.Error("expected usage to be populated")
	}
}

func TestMockProvider_CustomFuncs(t *testing.T) {
	p := &MockProvider{
		Tag: ProviderAnthropic,
		ChatFunc: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
			return &ChatResponse{Content: "custom: " + req.Model}, nil
		},
		ModelsFunc: func(ctx context.Context) ([]ModelInfo, error) {
			return nil, errors.New("offline")
		},
	}

	resp, err := p.Chat(context.Background(), ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "custom: m" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if p.Name() != ProviderAnthropic {
		t.Errorf("expected tag override, got %q", p.Name())
	}
	if _, err := p.Models(context.Background()); err == nil {
		t.Error("expected Models error from ModelsFunc")
	}
}

func TestNewAPIError_TruncatesOnRuneBoundary(t *testing.T) {
	// 199 ASCII bytes put the 200th character across the byte-200 boundary.
	body := strings.Repeat("a", 199) + strings.Repeat("é", 10)

	apiErr := NewAPIError(ProviderAnthropic, 400, body, nil)
	if !utf8.ValidString(apiErr.Message) {
		t.Fatalf("truncated message is not valid UTF-8: %q", apiErr.Message)
	}
	if n := utf8.RuneCountInString(apiErr.Message); n != maxErrorBody {
		t.Errorf("expected %d characters, got %d", maxErrorBody, n)
	}
	if !strings.HasSuffix(apiErr.Message, "aé") {
		t.Errorf("unexpected tail %q", apiErr.Message[len(apiErr.Message)-4:])
	}

	short := NewAPIError(ProviderAnthropic, 400, "héllo", nil)
	if short.Message != "héllo" {
		t.Errorf("short message changed: %q", short.Message)
	}
}
