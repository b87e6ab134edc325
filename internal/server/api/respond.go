// Package api provides HTTP API handlers for signcoach.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// pathID parses the positive integer id that follows prefix in path.
// ok is false when there is no id segment.
func pathID(path, prefix string) (id int, ok bool, err error) {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return 0, false, nil
	}
	id, err = strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, true, strconv.ErrSyntax
	}
	return id, true, nil
}
