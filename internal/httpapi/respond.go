package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeTrace reports an unexpected failure with its stack trace when the
// error carries one.
func writeTrace(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{
		"error": err.Error(),
		"trace": fmt.Sprintf("%+v", err),
	})
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}
