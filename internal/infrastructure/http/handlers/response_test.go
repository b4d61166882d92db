package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrDefaultCodes(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, ErrCodeInvalidRequest},
		{http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusForbidden, ErrCodeForbidden},
		{http.StatusNotFound, ErrCodeNotFound},
		{http.StatusConflict, ErrCodeConflict},
		{http.StatusInternalServerError, ErrCodeInternal},
		{http.StatusTeapot, ErrCodeInternal},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeErr(rec, tc.status, "", "boom")
		if rec.Code != tc.status {
			t.Errorf("status %d: got %d", tc.status, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("status %d: body: %v", tc.status, err)
		}
		if body["code"] != tc.code {
			t.Errorf("status %d: code = %q, want %q", tc.status, body["code"], tc.code)
		}
		if body["error"] != "boom" {
			t.Errorf("status %d: error = %q", tc.status, body["error"])
		}
	}
}

func TestWriteErrExplicitCodeWins(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, http.StatusUnauthorized, ErrCodeInvalidToken, "token expired")
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body["code"] != ErrCodeInvalidToken {
		t.Errorf("code = %q, want %q", body["code"], ErrCodeInvalidToken)
	}
}
