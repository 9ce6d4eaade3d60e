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
	"strings"
	"unicode"
)

// BuildChatMessages creates a chat message array with an optional system prompt.
func BuildChatMessages(systemPrompt, userPrompt string, history ...Message) []Message {
	messages := make([]Message, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userPrompt})
	return messages
}

// SplitSystem separates system messages from the conversation. Multiple
// system messages are joined with a blank line.
func SplitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if m.Content != "" {
				system = append(system, m.Content)
			}
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// ModelsWithFallback returns the provider's live model list. When discovery
// fails or yields nothing, it returns fallback instead and reports
// live=false along with the discovery error, if any.
func ModelsWithFallback(ctx context.Context, p Provider, fallback []ModelInfo) (models []ModelInfo, live bool, err error) {
	models, err = p.Models(ctx)
	if err != nil || len(models) == 0 {
		return fallback, false, err
	}
	return models, true, nil
}

var displayTokens = map[string]string{
	"gpt":     "GPT",
	"chatgpt": "ChatGPT",
	"latest":  "(Latest)",
	"preview": "(Preview)",
}

// DisplayName derives a human-readable name from a model id, for models
// discovered at runtime that carry no display name.
//
//	gpt-4o-mini -> GPT-4o Mini
//	grok-3-mini -> Grok 3 Mini
func DisplayName(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 {
		return id
	}

	words := make([]string, 0, len(parts))
	for i, part := range parts {
		if tok, ok := displayTokens[part]; ok {
			part = tok
		} else if i > 0 || !unicode.IsDigit(rune(part[0])) {
			part = titleWord(part)
		}
		// GPT-family ids keep their version glued to the family name.
		if i == 1 && (words[0] == "GPT" || words[0] == "ChatGPT") {
			words[0] += "-" + strings.ToLower(part)
			continue
		}
		words = append(words, part)
	}
	return strings.Join(words, " ")
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] == 'o' && len(r) > 1 && unicode.IsDigit(r[1]) {
		return s // o1, o3-mini
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
