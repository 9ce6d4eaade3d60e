// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output provides the JSON encoders shared by the CLI and the HTTP API.
//
// CLI commands print with JSON (pretty, stdout). HTTP handlers reply with
// WriteJSON and WriteError, which set the content type and status code:
//
//	output.WriteJSON(w, http.StatusOK, comparison)
//	output.WriteError(w, http.StatusBadRequest, "Prompt is required")
//	// {"error": "Prompt is required"}
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// JSON writes data as pretty-printed JSON to stdout.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON with 2-space indentation to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// JSONCompactTo writes data as single-line JSON to w.
func JSONCompactTo(w io.Writer, data any) error {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// ErrorJSON is the error body returned by the API and printed by the CLI.
type ErrorJSON struct {
	Error string `json:"error"`
}

// JSONError writes err as {"error": "..."} to stderr.
func JSONError(err error) error {
	return JSONTo(os.Stderr, ErrorJSON{Error: err.Error()})
}

// WriteJSON replies with data encoded as compact JSON.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already sent, so an encoding failure cannot be reported.
	_ = JSONCompactTo(w, data)
}

// WriteError replies with {"error": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorJSON{Error: msg})
}
