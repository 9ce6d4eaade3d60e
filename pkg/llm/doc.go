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

// Package llm provides a unified interface over the chat APIs of several
// Large Language Model vendors.
//
// Each vendor speaks its own dialect: different authentication headers,
// request shapes, response envelopes and model-listing endpoints. The
// adapters in this package hide those differences behind [Provider], so
// callers can send one prompt to many models and treat every reply the same.
//
// # Supported Providers
//
//   - OpenAI: chat completions and the Responses API
//   - Anthropic: the messages API
//   - Google: Gemini through the generative-ai-go SDK
//   - xAI: OpenAI-compatible chat completions
//   - Mock: scripted replies for tests
//
// # Quick Start
//
//	provider, err := llm.NewProvider(llm.ProviderConfig{
//	    Type:   "anthropic",
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := provider.Chat(ctx, llm.ChatRequest{
//	    Model:    "claude-3-5-haiku-20241022",
//	    Messages: llm.BuildChatMessages("Be brief.", "What is a goroutine?"),
//	})
//
// # Model Discovery
//
// Provider.Models queries the vendor for the models it currently serves.
// Discovery is best effort; [ModelsWithFallback] substitutes a static list
// when the vendor cannot be reached or returns nothing usable.
//
// # Errors
//
// Non-2xx vendor replies surface as [*APIError], which carries the HTTP
// status and a truncated body. Rate limits and 5xx replies are retried up to
// ProviderConfig.MaxRetries times before the error is returned.
package llm
