package main

import (
	"net/http"

	httphandlers "doughjo/internal/interfaces/http"
	"doughjo/internal/shared/config"
	"doughjo/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)

	// Aggregator webhooks (authenticated by payload, not by user session)
	mux.HandleFunc("/api/webhooks/plaid", deps.LinkHandler.HandleWebhook)

	// Protected routes. The active middleware counts each request as session
	// activity; the passive variant leaves the inactivity clock alone so the
	// client's status polling cannot keep an abandoned session alive.
	authActive := middleware.Auth(deps.JWT, deps.Sessions)
	authPassive := middleware.AuthPassive(deps.JWT, deps.Sessions)

	mux.Handle("/api/auth/logout", authPassive(http.HandlerFunc(deps.AuthHandler.HandleLogout)))
	mux.Handle("/api/session/status", authPassive(http.HandlerFunc(deps.SessionHandler.HandleStatus)))
	mux.Handle("/api/session/extend", authActive(http.HandlerFunc(deps.SessionHandler.HandleExtend)))

	mux.Handle("/api/users/me", authActive(http.HandlerFunc(deps.UserHandler.HandleMe)))
	mux.Handle("/api/link/token", authActive(http.HandlerFunc(deps.LinkHandler.HandleCreateLinkToken)))
	mux.Handle("/api/link/exchange", authActive(http.HandlerFunc(deps.LinkHandler.HandleExchange)))
	mux.Handle("/api/accounts/", authActive(http.HandlerFunc(deps.AccountHandler.HandleListAccounts)))
	mux.Handle("/api/accounts/refresh", authActive(http.HandlerFunc(deps.AccountHandler.HandleRefreshBalances)))
	mux.Handle("/api/accounts/{id}", authActive(http.HandlerFunc(deps.AccountHandler.HandleAccountByID)))
	mux.Handle("/api/chat", authActive(http.HandlerFunc(deps.ChatHandler.HandleChat)))

	// Apply global middleware
	handler := middleware.CORS(cfg.Server.AllowedHosts)(mux)
	if cfg.Server.Environment == "production" {
		handler = middleware.SecureCookies(middleware.HSTS(handler))
	}
	handler = middleware.Logging(middleware.Telemetry(handler))

	return handler
}
