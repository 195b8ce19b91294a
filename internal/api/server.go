package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, handler *Handler, adminAPIKey string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewMux(handler, adminAPIKey),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewMux registers the API routes. The refresh endpoint requires a bearer token when adminAPIKey is set.
func NewMux(handler *Handler, adminAPIKey string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Health)
	mux.HandleFunc("GET /api/v1/accounts/{id}", handler.GetOverview)
	mux.HandleFunc("GET /api/v1/accounts/{id}/balances", handler.GetBalances)
	mux.HandleFunc("GET /api/v1/accounts/{id}/balances.xlsx", handler.GetBalancesXLSX)
	mux.HandleFunc("GET /api/v1/accounts/{id}/claimable-balances", handler.GetClaimableBalances)
	mux.HandleFunc("GET /api/v1/watched/{id}", handler.GetWatched)

	refreshHandler := http.HandlerFunc(handler.RefreshWatched)
	if adminAPIKey != "" {
		mux.Handle("POST /api/v1/watched/{id}/refresh", requireAuth(adminAPIKey, refreshHandler))
	} else {
		mux.Handle("POST /api/v1/watched/{id}/refresh", refreshHandler)
	}

	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
