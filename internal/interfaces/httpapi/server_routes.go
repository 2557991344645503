package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("GET /v1/seasons/persisted", handler.ListPersistedSeasons)
	mux.HandleFunc("GET /v1/player-stats", handler.ListPlayerStats)
	mux.HandleFunc("GET /v1/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/scoring-events", handler.ListScoringEvents)
	mux.HandleFunc("GET /v1/payload", handler.GetPayload)
}

func registerRefreshRoutes(mux *http.ServeMux, handler *Handler, refreshToken string) {
	// Refresh may hit the stats API for every refreshable season.
	mux.Handle("POST /v1/refresh", RequireRefreshToken(refreshToken, http.HandlerFunc(handler.Refresh)))
}
