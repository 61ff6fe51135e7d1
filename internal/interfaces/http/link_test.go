package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doughjo/internal/domain/banklink"
	"doughjo/internal/domain/user"
	"doughjo/internal/shared/middleware"
)

// MockUserRepo implements user.Repository for testing
type MockUserRepo struct {
	GetByIDFunc func(ctx context.Context, id int64) (*user.User, error)
	AddXPFunc   func(ctx context.Context, userID int64, delta int) (int, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateParams) (*user.User, error) {
	return nil, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &user.User{ID: id}, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, nil
}

func (m *MockUserRepo) ListWithLinkedAccounts(ctx context.Context) ([]int64, error) {
	return nil, nil
}

func (m *MockUserRepo) AddXP(ctx context.Context, userID int64, delta int) (int, error) {
	if m.AddXPFunc != nil {
		return m.AddXPFunc(ctx, userID, delta)
	}
	return 0, nil
}

func TestHandleCreateLinkToken_NotConfigured(t *testing.T) {
	svc := banklink.NewService(&MockPlaidClient{configured: false}, &MockAccountRepo{})
	handler := NewLinkHandler(svc, &MockUserRepo{})

	req := authedRequest(http.MethodPost, "/api/link/token")
	rr := httptest.NewRecorder()
	handler.HandleCreateLinkToken(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestHandleExchange_RequiresPublicToken(t *testing.T) {
	svc := banklink.NewService(&MockPlaidClient{configured: true}, &MockAccountRepo{})
	handler := NewLinkHandler(svc, &MockUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/link/exchange", strings.NewReader(`{"publicToken":""}`))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, int64(1)))
	rr := httptest.NewRecorder()
	handler.HandleExchange(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandleExchange_AwardsXP(t *testing.T) {
	svc := banklink.NewService(&MockPlaidClient{configured: true}, &MockAccountRepo{})

	var awardedUser int64
	var awardedXP int
	users := &MockUserRepo{
		AddXPFunc: func(ctx context.Context, userID int64, delta int) (int, error) {
			awardedUser = userID
			awardedXP = delta
			return delta, nil
		},
	}
	handler := NewLinkHandler(svc, users)

	body := strings.NewReader(`{"publicToken":"public-sandbox-123","institutionName":"First Dojo Bank"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/link/exchange", body)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, int64(7)))
	rr := httptest.NewRecorder()
	handler.HandleExchange(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if awardedUser != 7 {
		t.Errorf("XP awarded to user %d, want 7", awardedUser)
	}
	if awardedXP != xpPerBankLink {
		t.Errorf("XP awarded = %d, want %d", awardedXP, xpPerBankLink)
	}
}

func TestHandleWebhook_UnknownTypeAcknowledged(t *testing.T) {
	svc := banklink.NewService(&MockPlaidClient{configured: true}, &MockAccountRepo{})
	handler := NewLinkHandler(svc, &MockUserRepo{})

	body := strings.NewReader(`{"webhook_type":"ITEM","webhook_code":"SOMETHING_NEW","item_id":"item-9"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/plaid", body)
	rr := httptest.NewRecorder()
	handler.HandleWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d for unrecognized webhook type", rr.Code, http.StatusOK)
	}
}

func TestHandleWebhook_MalformedBodyRejected(t *testing.T) {
	svc := banklink.NewService(&MockPlaidClient{configured: true}, &MockAccountRepo{})
	handler := NewLinkHandler(svc, &MockUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/plaid", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.HandleWebhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
