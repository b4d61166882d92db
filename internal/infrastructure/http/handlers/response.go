package handlers

import (
	"encoding/json"
	"net/http"
)

var errCodeByStatus = map[int]string{
	http.StatusBadRequest:   ErrCodeInvalidRequest,
	http.StatusUnauthorized: ErrCodeUnauthorized,
	http.StatusForbidden:    ErrCodeForbidden,
	http.StatusNotFound:     ErrCodeNotFound,
	http.StatusConflict:     ErrCodeConflict,
}

// writeErr sends JSON { "error": message, "code": errCode }. An empty
// errCode falls back to the table above keyed by HTTP status.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

func defaultErrCode(httpCode int) string {
	if code, ok := errCodeByStatus[httpCode]; ok {
		return code
	}
	return ErrCodeInternal
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
