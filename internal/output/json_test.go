// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package output

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestJSONTo verifies pretty-printed output with 2-space indentation.
func TestJSONTo(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONTo(&buf, map[string]any{"model": "gpt-4o"}); err != nil {
		t.Fatalf("JSONTo() error = %v", err)
	}
	want := "{\n  \"model\": \"gpt-4o\"\n}\n"
	if buf.String() != want {
		t.Errorf("JSONTo() = %q, want %q", buf.String(), want)
	}
}

// TestJSONCompactTo verifies single-line output.
func TestJSONCompactTo(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONCompactTo(&buf, []string{"a", "b"}); err != nil {
		t.Fatalf("JSONCompactTo() error = %v", err)
	}
	if buf.String() != "[\"a\",\"b\"]\n" {
		t.Errorf("JSONCompactTo() = %q", buf.String())
	}
}

// TestJSONTo_Unencodable verifies encoding failures are wrapped.
func TestJSONTo_Unencodable(t *testing.T) {
	err := JSONTo(&bytes.Buffer{}, math.Inf(1))
	if err == nil || !strings.Contains(err.Error(), "JSON encoding failed") {
		t.Errorf("expected wrapped encoding error, got %v", err)
	}
}

// TestWriteJSON verifies status, content type and body.
func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"count": 2})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"count":2}` {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// TestWriteError verifies the error envelope.
func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusServiceUnavailable, "No API keys configured. Please add API keys to use this service.")

	var body ErrorJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	if body.Error != "No API keys configured. Please add API keys to use this service." {
		t.Errorf("error = %q", body.Error)
	}
}
