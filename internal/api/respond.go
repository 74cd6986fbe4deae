package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/foxseedlab/voicecap/internal/capture"
)

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeFailure(w http.ResponseWriter, code capture.ErrorCode, detail string) {
	writeJSON(w, statusForCode(code), capture.Failure(code, detail))
}

// statusForCode maps request-shape problems to 400 and everything the
// pipeline could not complete to 500.
func statusForCode(code capture.ErrorCode) int {
	if code == capture.CodeInvalidRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
