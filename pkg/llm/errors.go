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
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey indicates the required API key is not configured.
	ErrNoAPIKey = errors.New("API key not configured")

	// ErrEmptyResponse indicates the vendor replied without any usable text.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrInvalidResponse indicates the vendor reply could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from API")
)

// maxErrorBody bounds how much of a vendor error body is kept.
const maxErrorBody = 200

// APIError represents a non-2xx reply from a vendor API.
type APIError struct {
	Provider   string // OpenAI, Anthropic, Google, xAI
	StatusCode int    // HTTP status code, 0 when the failure was not HTTP
	Message    string // Error body from the vendor, truncated
	Err        error  // Underlying error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (HTTP %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether the vendor throttled the request.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsAuthError reports whether the vendor rejected the credentials.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsTransient reports whether the request may succeed if retried.
func (e *APIError) IsTransient() bool {
	switch e.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// NewAPIError creates an APIError, truncating message to the first 200 bytes.
func NewAPIError(provider string, statusCode int, message string, err error) *APIError {
	return &APIError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    truncate(message, maxErrorBody),
		Err:        err,
	}
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
