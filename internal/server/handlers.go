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

package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/kraklabs/llmcompare/internal/output"
	"github.com/kraklabs/llmcompare/pkg/compare"
)

// Error messages returned by the API.
const (
	msgPromptRequired = "Prompt is required"
	msgModelRequired  = "A model must be selected"
	msgModelsRequired = "At least one model must be selected"
	msgNoAPIKeys      = "No API keys configured. Please add API keys to use this service."
	msgInvalidModel   = "Invalid model selected."
	msgInvalidJSON    = "Invalid JSON body"
	msgBodyTooLarge   = "Request body too large"
)

type modelResponseRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"system_prompt"`
	ModelID      string `json:"model_id"`
}

type healthResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	ModelsAvailable int       `json:"models_available"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	output.WriteJSON(w, http.StatusOK, s.svc.AvailableModels(r.Context()))
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.svc.AvailableProviders()
	if providers == nil {
		providers = []string{}
	}
	output.WriteJSON(w, http.StatusOK, providers)
}

func (s *Server) handleProviderModels(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	output.WriteJSON(w, http.StatusOK, s.svc.ModelsByProvider(r.Context(), provider))
}

func (s *Server) handleModelResponse(w http.ResponseWriter, r *http.Request) {
	var req modelResponseRequest
	if !s.decode(w, r, &req) {
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	modelID := strings.TrimSpace(req.ModelID)
	switch {
	case prompt == "":
		output.WriteError(w, http.StatusBadRequest, msgPromptRequired)
		return
	case modelID == "":
		output.WriteError(w, http.StatusBadRequest, msgModelRequired)
		return
	case !s.svc.HasCredentials():
		output.WriteError(w, http.StatusServiceUnavailable, msgNoAPIKeys)
		return
	}

	model, ok := s.svc.ResolveModel(r.Context(), modelID)
	if !ok {
		output.WriteError(w, http.StatusBadRequest, msgInvalidModel)
		return
	}

	res := s.svc.CallModel(r.Context(), model, prompt, strings.TrimSpace(req.SystemPrompt))
	output.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compare.Request
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		output.WriteError(w, http.StatusBadRequest, msgPromptRequired)
		return
	}
	if !hasModelID(req.ModelIDs) {
		output.WriteError(w, http.StatusBadRequest, msgModelsRequired)
		return
	}
	if !s.svc.HasCredentials() {
		output.WriteError(w, http.StatusServiceUnavailable, msgNoAPIKeys)
		return
	}

	cmp, err := s.svc.Compare(r.Context(), req)
	switch {
	case stderrors.Is(err, compare.ErrEmptyPrompt):
		output.WriteError(w, http.StatusBadRequest, msgPromptRequired)
	case stderrors.Is(err, compare.ErrNoModels):
		output.WriteError(w, http.StatusBadRequest, msgModelsRequired)
	case err != nil:
		s.log.Error(err, "comparison failed")
		output.WriteError(w, http.StatusInternalServerError, "Comparison failed")
	default:
		output.WriteJSON(w, http.StatusOK, cmp)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	output.WriteJSON(w, http.StatusOK, healthResponse{
		Status:          "healthy",
		Timestamp:       s.opts.Now(),
		ModelsAvailable: len(s.svc.AvailableModels(r.Context())),
	})
}

func hasModelID(ids []string) bool {
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			return true
		}
	}
	return false
}

// decode reads a JSON body into v, replying with an error when it cannot.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			output.WriteError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		} else {
			output.WriteError(w, http.StatusBadRequest, msgInvalidJSON)
		}
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	output.WriteError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	output.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
