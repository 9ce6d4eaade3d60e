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

// Package testing provides test helpers for exercising llmcompare against
// fake vendor APIs.
//
// # Quick Start
//
// Start a fake vendor, script its routes, and point an adapter at it:
//
//	func TestMyFeature(t *testing.T) {
//	    vendor := testing.StartFakeVendor(t)
//	    vendor.Reply("POST /chat/completions", http.StatusOK, testing.OpenAIChatBody("hi"))
//
//	    p, _ := llm.NewProvider(llm.ProviderConfig{
//	        Type:    "openai",
//	        APIKey:  "sk-test",
//	        BaseURL: vendor.URL(),
//	    })
//	    // Run your tests...
//	    require.Equal(t, 1, vendor.Calls("POST /chat/completions"))
//	}
//
// # Canned Bodies
//
// The package provides reply bodies in each vendor's wire format:
//   - OpenAIChatBody: a chat completions reply
//   - OpenAIResponsesBody: a Responses API reply
//   - AnthropicMessageBody: a messages API reply
//   - ModelListBody: an OpenAI-style /models listing (also used by xAI)
//   - AnthropicModelListBody: an Anthropic /models listing
//
// # Environment
//
// ClearProviderKeys unsets every provider credential for the duration of a
// test, so tests never pick up keys from the developer's shell.
package testing
