package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler, stream *StreamHub) {
	mux.HandleFunc("GET /v1/live", handler.GetLive)
	mux.HandleFunc("GET /v1/live/entries/{entryID}", handler.GetLiveEntry)
	if stream != nil {
		mux.Handle("GET /v1/live/stream", stream)
	}
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/live/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshLive)))
}
