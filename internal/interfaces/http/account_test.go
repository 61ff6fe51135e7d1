package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"doughjo/internal/domain/account"
	"doughjo/internal/domain/banklink"
	"doughjo/internal/infrastructure/plaid"
	"doughjo/internal/shared/middleware"
)

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	CreateBatchFunc            func(ctx context.Context, params []account.CreateParams) ([]*account.Account, error)
	ListByUserIDFunc           func(ctx context.Context, userID int64) ([]*account.Account, error)
	ListByItemIDFunc           func(ctx context.Context, itemID string) ([]*account.Account, error)
	DeleteFunc                 func(ctx context.Context, userID, accountID int64) (int64, error)
	UpdateBalanceByPlaidIDFunc func(ctx context.Context, update account.BalanceUpdate) (int64, error)
}

func (m *MockAccountRepo) CreateBatch(ctx context.Context, params []account.CreateParams) ([]*account.Account, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAccountRepo) ListByItemID(ctx context.Context, itemID string) ([]*account.Account, error) {
	if m.ListByItemIDFunc != nil {
		return m.ListByItemIDFunc(ctx, itemID)
	}
	return nil, nil
}

func (m *MockAccountRepo) Delete(ctx context.Context, userID, accountID int64) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, accountID)
	}
	return 0, nil
}

func (m *MockAccountRepo) UpdateBalanceByPlaidID(ctx context.Context, update account.BalanceUpdate) (int64, error) {
	if m.UpdateBalanceByPlaidIDFunc != nil {
		return m.UpdateBalanceByPlaidIDFunc(ctx, update)
	}
	return 1, nil
}

// MockPlaidClient implements plaid.ClientInterface for testing
type MockPlaidClient struct {
	configured              bool
	CreateLinkTokenFunc     func(ctx context.Context, clientUserID string) (*plaid.LinkTokenResponse, error)
	ExchangePublicTokenFunc func(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error)
	GetAccountsFunc         func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error)
}

func (m *MockPlaidClient) Configured() bool { return m.configured }

func (m *MockPlaidClient) CreateLinkToken(ctx context.Context, clientUserID string) (*plaid.LinkTokenResponse, error) {
	if m.CreateLinkTokenFunc != nil {
		return m.CreateLinkTokenFunc(ctx, clientUserID)
	}
	return &plaid.LinkTokenResponse{LinkToken: "link-token"}, nil
}

func (m *MockPlaidClient) ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResponse, error) {
	if m.ExchangePublicTokenFunc != nil {
		return m.ExchangePublicTokenFunc(ctx, publicToken)
	}
	return &plaid.ExchangeResponse{AccessToken: "access-token", ItemID: "item-1"}, nil
}

func (m *MockPlaidClient) GetAccounts(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, accessToken)
	}
	return &plaid.AccountsResponse{}, nil
}

func authedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
	return req.WithContext(ctx)
}

func TestHandleListAccounts_InterpretsBalances(t *testing.T) {
	repo := &MockAccountRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
			return []*account.Account{
				{ID: 1, Name: "Everyday Checking", AccountType: "depository", Balance: 1200.50, Currency: "USD"},
				{ID: 2, Name: "Rewards Card", AccountType: "credit", Balance: -850.25, Currency: "USD"},
			}, nil
		},
	}
	handler := NewAccountHandler(account.NewService(repo), nil)

	req := authedRequest(http.MethodGet, "/api/accounts/")
	rr := httptest.NewRecorder()
	handler.HandleListAccounts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []AccountResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}

	if resp[0].Balance.Owed || resp[0].Balance.Overdrawn {
		t.Errorf("positive checking balance flagged: %+v", resp[0].Balance)
	}
	if !resp[1].Balance.Owed {
		t.Errorf("negative credit balance not flagged as owed: %+v", resp[1].Balance)
	}
	if resp[1].Balance.Amount.String() != "850.25" {
		t.Errorf("owed amount = %s, want 850.25", resp[1].Balance.Amount)
	}
}

func TestHandleAccountByID_Delete(t *testing.T) {
	tests := []struct {
		name           string
		pathID         string
		deleteFunc     func(ctx context.Context, userID, accountID int64) (int64, error)
		expectedStatus int
	}{
		{
			name:   "Success",
			pathID: "42",
			deleteFunc: func(ctx context.Context, userID, accountID int64) (int64, error) {
				if userID != 1 || accountID != 42 {
					t.Errorf("Delete(%d, %d), want Delete(1, 42)", userID, accountID)
				}
				return 1, nil
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "Not Found Or Other Tenant",
			pathID: "42",
			deleteFunc: func(ctx context.Context, userID, accountID int64) (int64, error) {
				return 0, nil
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Invalid ID",
			pathID:         "not-a-number",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockAccountRepo{DeleteFunc: tt.deleteFunc}
			handler := NewAccountHandler(account.NewService(repo), nil)

			req := authedRequest(http.MethodDelete, "/api/accounts/"+tt.pathID)
			req.SetPathValue("id", tt.pathID)
			rr := httptest.NewRecorder()
			handler.HandleAccountByID(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleRefreshBalances_PartialFailureStill200(t *testing.T) {
	fl := func(v float64) *float64 { return &v }

	repo := &MockAccountRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
			return []*account.Account{
				{ID: 1, PlaidAccountID: "acc-a", AccessToken: "token-a"},
				{ID: 2, PlaidAccountID: "acc-b", AccessToken: "token-b"},
			}, nil
		},
	}
	client := &MockPlaidClient{
		configured: true,
		GetAccountsFunc: func(ctx context.Context, accessToken string) (*plaid.AccountsResponse, error) {
			if accessToken == "token-a" {
				return nil, &plaid.APIError{StatusCode: 400, ErrorType: "ITEM_ERROR", ErrorCode: "ITEM_LOGIN_REQUIRED"}
			}
			return &plaid.AccountsResponse{
				Accounts: []plaid.Account{
					{AccountID: "acc-b", Balances: plaid.Balances{Current: fl(10)}},
				},
			}, nil
		},
	}
	handler := NewAccountHandler(account.NewService(repo), banklink.NewService(client, repo))

	req := authedRequest(http.MethodPost, "/api/accounts/refresh")
	rr := httptest.NewRecorder()
	handler.HandleRefreshBalances(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var resp RefreshResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Refreshed != 1 {
		t.Errorf("Refreshed = %d, want 1", resp.Refreshed)
	}
	if resp.ItemsFailed != 1 {
		t.Errorf("ItemsFailed = %d, want 1", resp.ItemsFailed)
	}
}
