package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"doughjo/internal/domain/account"
	"doughjo/internal/domain/banklink"
	"doughjo/internal/shared/middleware"
)

type AccountHandler struct {
	accountService *account.Service
	linkService    *banklink.Service
}

func NewAccountHandler(accountService *account.Service, linkService *banklink.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService, linkService: linkService}
}

// AccountResponse is the client-facing account shape. The raw signed
// balance is interpreted server-side so every surface renders debt and
// overdraft the same way. The access token never leaves the server.
type AccountResponse struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	OfficialName    string              `json:"officialName,omitempty"`
	AccountType     string              `json:"accountType"`
	Subtype         string              `json:"subtype,omitempty"`
	Mask            string              `json:"mask,omitempty"`
	Balance         account.BalanceView `json:"balance"`
	Currency        string              `json:"currency"`
	InstitutionName string              `json:"institutionName,omitempty"`
	LastUpdated     string              `json:"lastUpdated,omitempty"`
}

type RefreshResponse struct {
	Refreshed   int `json:"refreshed"`
	ItemsFailed int `json:"itemsFailed"`
}

func toAccountResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:              acc.ID,
		Name:            acc.Name,
		OfficialName:    acc.OfficialName,
		AccountType:     acc.AccountType,
		Subtype:         acc.Subtype,
		Mask:            acc.Mask,
		Balance:         account.InterpretBalance(acc.AccountType, acc.Balance),
		Currency:        acc.Currency,
		InstitutionName: acc.InstitutionName,
	}
	if !acc.LastUpdated.IsZero() {
		resp.LastUpdated = acc.LastUpdated.Format(time.RFC3339)
	}
	return resp
}

// HandleListAccounts returns all linked accounts for the authenticated user
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accounts, err := h.accountService.ListAccounts(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing accounts for user %d: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	response := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		response = append(response, toAccountResponse(acc))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleAccountByID handles DELETE on a specific account
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	if err := h.accountService.RemoveAccount(r.Context(), userID, accountID); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		log.Printf("Error deleting account %d for user %d: %v", accountID, userID, err)
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRefreshBalances pulls fresh balances for all of the user's items.
// Partial failures still return 200 with the per-item failure count.
func (h *AccountHandler) HandleRefreshBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.linkService.RefreshBalances(r.Context(), userID)
	if err != nil {
		writeLinkError(w, userID, "refresh balances", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RefreshResponse{
		Refreshed:   result.Refreshed,
		ItemsFailed: result.ItemsFailed,
	})
}
