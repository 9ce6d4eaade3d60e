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
	"testing"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
)

type fakeGemini struct {
	calls   []geminiCall
	resp    *genai.GenerateContentResponse
	models  []*genai.ModelInfo
	err     error
	listErr error
}

func (f *fakeGemini) Generate(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, call)
	return f.resp, f.err
}

func (f *fakeGemini) ListModels(ctx context.Context) ([]*genai.ModelInfo, error) {
	return f.models, f.listErr
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
		UsageMetadata: &genai.UsageMetadata{
			PromptTokenCount:     6,
			CandidatesTokenCount: 3,
			TotalTokenCount:      9,
		},
	}
}

func TestGoogleProvider_Chat(t *testing.T) {
	fake := &fakeGemini{resp: textResponse("Gemini ", "answer")}
	p := &googleProvider{apiKey: "k", client: fake}

	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:       "gemini-2.5-flash",
		Messages:    BuildChatMessages("Be kind.", "Hi"),
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	if resp.Content != "Gemini answer" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 9 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fake.calls))
	}
	call := fake.calls[0]
	if call.System != "Be kind." || call.Prompt != "Hi" || len(call.History) != 0 {
		t.Errorf("unexpected call %+v", call)
	}
	if call.MaxTokens != 1000 || call.Temperature != float32(0.7) {
		t.Errorf("unexpected generation settings %+v", call)
	}
}

func TestGoogleProvider_Chat_History(t *testing.T) {
	fake := &fakeGemini{resp: textResponse("ok")}
	p := &googleProvider{apiKey: "k", client: fake}

	history := []Message{{Role: "user", Content: "one"}, {Role: "assistant", Content: "two"}}
	_, err := p.Chat(context.Background(), ChatRequest{
		Model:    "gemini-2.5-pro",
		Messages: BuildChatMessages("", "three", history...),
	})
	if err != nil {
		t.Fatalf("Chat error = %v", err)
	}
	call := fake.calls[0]
	if len(call.History) != 2 || call.History[1].Role != "model" {
		t.Errorf("expected assistant mapped to model role, got %+v", call.History)
	}
}

func TestGoogleProvider_Chat_Errors(t *testing.T) {
	fake := &fakeGemini{err: &googleapi.Error{Code: 403, Message: "permission denied"}}
	p := &googleProvider{apiKey: "k", client: fake}

	_, err := p.Chat(context.Background(), ChatRequest{Model: "gemini", Messages: BuildChatMessages("", "Hi")})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Provider != ProviderGoogle || apiErr.StatusCode != 0 {
		t.Errorf("unexpected APIError %+v", apiErr)
	}

	fake.err = nil
	fake.resp = &genai.GenerateContentResponse{}
	_, err = p.Chat(context.Background(), ChatRequest{Model: "gemini", Messages: BuildChatMessages("", "Hi")})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}

	fake.err = context.DeadlineExceeded
	_, err = p.Chat(context.Background(), ChatRequest{Model: "gemini", Messages: BuildChatMessages("", "Hi")})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error passthrough, got %v", err)
	}
}

func TestGoogleProvider_Models(t *testing.T) {
	fake := &fakeGemini{models: []*genai.ModelInfo{
		{Name: "models/gemini-2.5-pro", DisplayName: "Gemini 2.5 Pro", SupportedGenerationMethods: []string{"generateContent", "countTokens"}},
		{Name: "models/text-embedding-004", SupportedGenerationMethods: []string{"embedContent"}},
		{Name: "models/gemini-2.5-flash", SupportedGenerationMethods: []string{"generateContent"}},
	}}
	p := &googleProvider{apiKey: "k", client: fake}

	models, err := p.Models(context.Background())
	if err != nil {
		t.Fatalf("Models error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 generateContent models, got %d", len(models))
	}
	if models[0].ID != "gemini-2.5-pro" || models[0].Name != "Gemini 2.5 Pro" {
		t.Errorf("unexpected model %+v", models[0])
	}
	if models[1].Name != "Gemini 2.5 Flash" {
		t.Errorf("expected derived name, got %q", models[1].Name)
	}
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-pro:generateContent"
	if models[0].Endpoint != want {
		t.Errorf("endpoint = %q, want %q", models[0].Endpoint, want)
	}
}
