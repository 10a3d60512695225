package server

import "net/http"

// NewMux wires every endpoint and wraps the result in CORS.
func NewMux(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/reports", h.handleGenerate)
	mux.HandleFunc("/api/v1/reports/", h.handleReportLookup)
	mux.HandleFunc("/api/v1/watch", h.handleWatch)
	mux.HandleFunc("/healthz", h.handleHealthz)

	return CORS(mux)
}
