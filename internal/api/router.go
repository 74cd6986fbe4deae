// Package api exposes the capture pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/foxseedlab/voicecap/internal/metrics"
	"github.com/gorilla/mux"
)

const CapturePath = "/api/voice/capture"

func NewRouter(ch *CaptureHandler) *mux.Router {
	root := mux.NewRouter()
	root.Use(requestID, accessLog, recoverPanics)

	root.HandleFunc(CapturePath, ch.Capture).Methods(http.MethodPost)
	root.HandleFunc("/healthz", health).Methods(http.MethodGet)
	root.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return root
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
