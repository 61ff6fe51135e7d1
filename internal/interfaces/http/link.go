package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"doughjo/internal/domain/banklink"
	"doughjo/internal/domain/user"
	"doughjo/internal/shared/middleware"
)

// xpPerBankLink is awarded once per successful institution link.
const xpPerBankLink = 50

type LinkHandler struct {
	linkService *banklink.Service
	userRepo    user.Repository
}

func NewLinkHandler(linkService *banklink.Service, userRepo user.Repository) *LinkHandler {
	return &LinkHandler{linkService: linkService, userRepo: userRepo}
}

type LinkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type ExchangeRequest struct {
	PublicToken     string `json:"publicToken"`
	InstitutionName string `json:"institutionName"`
}

type ExchangeResponse struct {
	AccountsLinked int `json:"accountsLinked"`
}

// HandleCreateLinkToken starts a bank-link flow by minting a short-lived
// link token for the client widget.
func (h *LinkHandler) HandleCreateLinkToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := h.linkService.CreateLinkToken(r.Context(), userID)
	if err != nil {
		writeLinkError(w, userID, "create link token", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LinkTokenResponse{LinkToken: token})
}

// HandleExchange trades the widget's public token for persisted accounts.
func (h *LinkHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.PublicToken == "" {
		http.Error(w, "Public token is required", http.StatusBadRequest)
		return
	}

	accounts, err := h.linkService.ExchangeAndPersist(r.Context(), userID, req.PublicToken, req.InstitutionName)
	if err != nil {
		writeLinkError(w, userID, "exchange public token", err)
		return
	}

	// Linking a bank is a progression milestone. A failed award never fails
	// the link itself.
	if _, err := h.userRepo.AddXP(r.Context(), userID, xpPerBankLink); err != nil {
		log.Printf("User %d: failed to award link XP: %v", userID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExchangeResponse{AccountsLinked: len(accounts)})
}

// HandleWebhook receives aggregator notifications. Unknown types are
// acknowledged with 2xx so the aggregator does not retry them; only a
// malformed body is rejected.
func (h *LinkHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload banklink.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid webhook body", http.StatusBadRequest)
		return
	}

	if err := h.linkService.HandleWebhook(r.Context(), payload); err != nil {
		// Still acknowledge: the aggregator will resend balance webhooks and
		// the scheduler covers any missed refresh.
		log.Printf("Webhook %s/%s failed: %v", payload.WebhookType, payload.WebhookCode, err)
	}

	w.WriteHeader(http.StatusOK)
}

// writeLinkError maps the bank-link error taxonomy to HTTP statuses.
func writeLinkError(w http.ResponseWriter, userID int64, op string, err error) {
	var upstream *banklink.UpstreamError
	var persistence *banklink.PersistenceError

	switch {
	case errors.Is(err, banklink.ErrNotConfigured):
		http.Error(w, "Bank linking is not configured", http.StatusServiceUnavailable)
	case errors.Is(err, banklink.ErrExchange):
		http.Error(w, "Link token is invalid or already used", http.StatusBadRequest)
	case errors.As(err, &upstream):
		log.Printf("User %d: upstream failure during %s: %v", userID, op, err)
		http.Error(w, "Bank provider is unavailable", http.StatusBadGateway)
	case errors.As(err, &persistence):
		log.Printf("User %d: persistence failure during %s: %v", userID, op, err)
		http.Error(w, "Failed to save linked accounts", http.StatusInternalServerError)
	default:
		log.Printf("User %d: failed to %s: %v", userID, op, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
