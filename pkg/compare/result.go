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

package compare

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/kraklabs/llmcompare/pkg/llm"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error types carried by failed results.
const (
	ErrorMissingAPIKey = "missing_api_key"
	ErrorAPI           = "api_error"
	ErrorTimeout       = "timeout"
	ErrorOpenAI        = "openai_api_error"
	ErrorGoogle        = "google_api_error"
	ErrorInvalidModel  = "invalid_model"
	ErrorDisabled      = "provider_disabled"
	ErrorUnknown       = "unknown_error"
)

// Result is the normalized outcome of one model call. On failure Response
// holds a human-readable message and ErrorType classifies it.
type Result struct {
	ModelID   string     `json:"model_id"`
	ModelName string     `json:"model_name"`
	Provider  string     `json:"provider"`
	Response  string     `json:"response"`
	Timestamp time.Time  `json:"timestamp"`
	Status    string     `json:"status"`
	ErrorType string     `json:"error_type,omitempty"`
	Usage     *llm.Usage `json:"usage,omitempty"`
	LatencyMS int64      `json:"latency_ms"`
}

// CallModel sends prompt to model and never fails: every error is folded
// into the returned Result.
func (s *Service) CallModel(ctx context.Context, model llm.ModelInfo, prompt, systemPrompt string) Result {
	res := Result{
		ModelID:   model.ID,
		ModelName: model.Name,
		Provider:  model.Provider,
		Timestamp: s.opts.Now(),
	}

	b, ok := s.backend(model.Provider)
	if !ok {
		s.fail(&res, ErrorDisabled, fmt.Sprintf("Provider %s is not enabled.", model.Provider), nil)
		return res
	}

	key := ""
	if model.APIKeyEnv != "" {
		key = strings.TrimSpace(s.opts.Getenv(model.APIKeyEnv))
	}
	if key == "" {
		s.fail(&res, ErrorMissingAPIKey, fmt.Sprintf("API key not set. Please set %s in the environment.", model.APIKeyEnv), nil)
		return res
	}

	p, err := s.provider(b, key)
	if err != nil {
		s.fail(&res, ErrorUnknown, "Unexpected error: "+err.Error(), err)
		return res
	}

	maxTokens := s.opts.MaxTokens
	if b.MaxTokens > 0 {
		maxTokens = b.MaxTokens
	}

	cctx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := p.Chat(cctx, llm.ChatRequest{
		Model:       model.ID,
		Endpoint:    model.Endpoint,
		Messages:    llm.BuildChatMessages(systemPrompt, prompt),
		MaxTokens:   maxTokens,
		Temperature: s.opts.Temperature,
	})
	res.LatencyMS = time.Since(start).Milliseconds()
	observeLatency(model.Provider, time.Since(start))

	if err != nil {
		errType, msg := classify(model.Provider, err)
		s.fail(&res, errType, msg, err)
		return res
	}

	res.Status = StatusSuccess
	res.Response = resp.Content
	res.Usage = resp.Usage
	recordCall(model.Provider, StatusSuccess, "")
	s.log.V(1).Info("model call succeeded", "model", model.ID, "provider", model.Provider, "latency_ms", res.LatencyMS)
	return res
}

func (s *Service) fail(res *Result, errType, msg string, err error) {
	res.Status = StatusError
	res.ErrorType = errType
	res.Response = msg
	recordCall(res.Provider, StatusError, errType)
	if err == nil {
		s.log.Info("model call skipped", "model", res.ModelID, "provider", res.Provider, "error_type", errType)
		return
	}
	s.log.Error(err, "model call failed", "model", res.ModelID, "provider", res.Provider, "error_type", errType)
}

func (s *Service) invalidModel(id string) Result {
	res := Result{ModelID: id, ModelName: id, Timestamp: s.opts.Now()}
	s.fail(&res, ErrorInvalidModel, "Invalid model selected.", nil)
	return res
}

// classify maps a provider error to an error type and a display message.
func classify(provider string, err error) (string, string) {
	if errors.Is(err, llm.ErrNoAPIKey) {
		return ErrorMissingAPIKey, "API key not set."
	}
	if isTimeout(err) {
		return ErrorTimeout, "Request timed out. Please try again."
	}

	var apiErr *llm.APIError
	isAPI := errors.As(err, &apiErr)

	switch {
	case strings.EqualFold(provider, llm.ProviderOpenAI):
		return ErrorOpenAI, "OpenAI API Error: " + detail(apiErr, err)
	case strings.EqualFold(provider, llm.ProviderGoogle):
		return ErrorGoogle, "Google API Error: " + detail(apiErr, err)
	case isAPI && apiErr.StatusCode > 0:
		return ErrorAPI, fmt.Sprintf("API Error: %d - %s", apiErr.StatusCode, apiErr.Message)
	}
	return ErrorUnknown, "Unexpected error: " + err.Error()
}

func detail(apiErr *llm.APIError, err error) string {
	if apiErr == nil {
		return err.Error()
	}
	if apiErr.StatusCode > 0 {
		return fmt.Sprintf("%d - %s", apiErr.StatusCode, apiErr.Message)
	}
	if apiErr.Err != nil {
		return apiErr.Message + ": " + apiErr.Err.Error()
	}
	return apiErr.Message
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
