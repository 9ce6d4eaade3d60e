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

package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// ProviderKeyEnvs lists the credential variables read by the default backends.
var ProviderKeyEnvs = []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "XAI_API_KEY"}

// ClearProviderKeys blanks every provider credential for the current test.
func ClearProviderKeys(t *testing.T) {
	t.Helper()
	for _, env := range ProviderKeyEnvs {
		t.Setenv(env, "")
	}
}

// RecordedRequest is a request captured by FakeVendor.
type RecordedRequest struct {
	Route  string
	Header http.Header
	Query  url.Values
	Body   map[string]any
}

type scriptedReply struct {
	status int
	body   string
}

// FakeVendor is an httptest server that replays scripted vendor replies.
// Routes are keyed "METHOD /path". Unscripted routes answer 404.
type FakeVendor struct {
	server *httptest.Server

	mu       sync.Mutex
	replies  map[string][]scriptedReply
	requests []RecordedRequest
}

// StartFakeVendor starts a FakeVendor that is closed when the test finishes.
//
// Example:
//
//	vendor := testing.StartFakeVendor(t)
//	vendor.Reply("GET /models", http.StatusOK, testing.ModelListBody("gpt-4o"))
func StartFakeVendor(t *testing.T) *FakeVendor {
	t.Helper()

	f := &FakeVendor{replies: make(map[string][]scriptedReply)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the base URL of the fake vendor.
func (f *FakeVendor) URL() string {
	return f.server.URL
}

// Reply makes route answer with status and body. The last scripted reply
// for a route repeats once earlier ones are consumed.
func (f *FakeVendor) Reply(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[route] = append(f.replies[route], scriptedReply{status: status, body: body})
}

// Calls returns how many requests hit route.
func (f *FakeVendor) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// Requests returns a copy of the captured requests in arrival order.
func (f *FakeVendor) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent request for route, if any.
func (f *FakeVendor) LastRequest(route string) (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Route == route {
			return f.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

func (f *FakeVendor) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	rec := RecordedRequest{Route: route, Header: r.Header.Clone(), Query: r.URL.Query()}
	if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	queue := f.replies[route]
	var reply scriptedReply
	found := len(queue) > 0
	if found {
		reply = queue[0]
		if len(queue) > 1 {
			f.replies[route] = queue[1:]
		}
	}
	f.mu.Unlock()

	if !found {
		http.Error(w, `{"error":"no scripted reply"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.status)
	_, _ = io.WriteString(w, reply.body)
}

// OpenAIChatBody returns a chat completions reply carrying content.
func OpenAIChatBody(content string) string {
	return mustJSON(map[string]any{
		"model": "gpt-4o",
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
}

// OpenAIResponsesBody returns a Responses API reply whose first output item
// holds one output_text part per text.
func OpenAIResponsesBody(texts ...string) string {
	parts := make([]any, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, map[string]any{"type": "output_text", "text": t})
	}
	return mustJSON(map[string]any{
		"model":  "gpt-5",
		"output": []any{map[string]any{"type": "message", "content": parts}},
		"usage":  map[string]any{"input_tokens": 8, "output_tokens": 4, "total_tokens": 12},
	})
}

// AnthropicMessageBody returns a messages API reply with one text block per text.
func AnthropicMessageBody(texts ...string) string {
	blocks := make([]any, 0, len(texts))
	for _, t := range texts {
		blocks = append(blocks, map[string]any{"type": "text", "text": t})
	}
	return mustJSON(map[string]any{
		"model":   "claude-3-5-haiku-20241022",
		"content": blocks,
		"usage":   map[string]any{"input_tokens": 12, "output_tokens": 7},
	})
}

// ModelListBody returns an OpenAI-style model listing.
func ModelListBody(ids ...string) string {
	data := make([]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{"id": id, "object": "model"})
	}
	return mustJSON(map[string]any{"object": "list", "data": data})
}

// AnthropicModelListBody returns an Anthropic model listing. Arguments
// alternate id and display name.
func AnthropicModelListBody(idAndNames ...string) string {
	data := make([]any, 0, len(idAndNames)/2)
	for i := 0; i+1 < len(idAndNames); i += 2 {
		data = append(data, map[string]any{"id": idAndNames[i], "display_name": idAndNames[i+1], "type": "model"})
	}
	return mustJSON(map[string]any{"data": data, "has_more": false})
}

// AnthropicModelPageBody returns one page of an Anthropic model listing.
// last_id is the id of the final entry on the page.
func AnthropicModelPageBody(hasMore bool, idAndNames ...string) string {
	data := make([]any, 0, len(idAndNames)/2)
	lastID := ""
	for i := 0; i+1 < len(idAndNames); i += 2 {
		data = append(data, map[string]any{"id": idAndNames[i], "display_name": idAndNames[i+1], "type": "model"})
		lastID = idAndNames[i]
	}
	return mustJSON(map[string]any{"data": data, "has_more": hasMore, "last_id": lastID})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
