package middleware

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	WriteError(w, r, code, msg)
}

// WriteError answers htmx requests with a JSON body and everything else with
// plain text. Optional fields name the form inputs that failed.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string, fields ...string) {
	if IsHTMX(r.Context()) || r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Fields: fields})
		return
	}
	http.Error(w, msg, code)
}
