package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"doughjo/internal/domain/account"
	"doughjo/internal/domain/user"
)

// MockLLM implements LLMClient
type MockLLM struct {
	configured   bool
	CompleteFunc func(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

func (m *MockLLM) Configured() bool { return m.configured }

func (m *MockLLM) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userMessage)
	}
	return "mock answer", nil
}

// MockUserRepo implements user.Repository
type MockUserRepo struct {
	GetByIDFunc func(ctx context.Context, id int64) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateParams) (*user.User, error) {
	return nil, nil
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &user.User{ID: id, Name: "Kai", XP: 250}, nil
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, nil
}
func (m *MockUserRepo) ListWithLinkedAccounts(ctx context.Context) ([]int64, error) {
	return nil, nil
}
func (m *MockUserRepo) AddXP(ctx context.Context, userID int64, delta int) (int, error) {
	return 0, nil
}

// MockAccountRepo implements account.Repository
type MockAccountRepo struct {
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*account.Account, error)
}

func (m *MockAccountRepo) CreateBatch(ctx context.Context, params []account.CreateParams) ([]*account.Account, error) {
	return nil, nil
}
func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}
func (m *MockAccountRepo) ListByItemID(ctx context.Context, itemID string) ([]*account.Account, error) {
	return nil, nil
}
func (m *MockAccountRepo) Delete(ctx context.Context, userID, accountID int64) (int64, error) {
	return 0, nil
}
func (m *MockAccountRepo) UpdateBalanceByPlaidID(ctx context.Context, update account.BalanceUpdate) (int64, error) {
	return 0, nil
}

func isFallback(s string) bool {
	for _, f := range fallbackResponses {
		if s == f {
			return true
		}
	}
	return false
}

func TestAsk_NoCredentialsServesFallback(t *testing.T) {
	svc := NewService(&MockLLM{configured: false}, &MockUserRepo{}, &MockAccountRepo{})

	answer, err := svc.Ask(context.Background(), 1, "how do I start saving?")
	if err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}
	if !isFallback(answer) {
		t.Errorf("Ask() = %q, want a fallback-pool response", answer)
	}
}

func TestAsk_LLMFailureServesFallbackNotError(t *testing.T) {
	llm := &MockLLM{
		configured: true,
		CompleteFunc: func(ctx context.Context, systemPrompt, userMessage string) (string, error) {
			return "", errors.New("provider timeout")
		},
	}
	svc := NewService(llm, &MockUserRepo{}, &MockAccountRepo{})

	answer, err := svc.Ask(context.Background(), 1, "help")
	if err != nil {
		t.Fatalf("Ask() = %v, provider failures must not surface to the user", err)
	}
	if !isFallback(answer) {
		t.Errorf("Ask() = %q, want a fallback-pool response", answer)
	}
}

func TestAsk_AssemblesFinancialContext(t *testing.T) {
	var gotPrompt string
	llm := &MockLLM{
		configured: true,
		CompleteFunc: func(ctx context.Context, systemPrompt, userMessage string) (string, error) {
			gotPrompt = systemPrompt
			return "advice", nil
		},
	}
	accounts := &MockAccountRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]*account.Account, error) {
			return []*account.Account{
				{Name: "Everyday Checking", InstitutionName: "First Dojo Bank", AccountType: "depository", Balance: 1200.50, Currency: "USD"},
				{Name: "Rewards Card", InstitutionName: "First Dojo Bank", AccountType: "credit", Balance: -850.25, Currency: "USD"},
			}, nil
		},
	}

	svc := NewService(llm, &MockUserRepo{}, accounts)
	if _, err := svc.Ask(context.Background(), 1, "how am I doing?"); err != nil {
		t.Fatalf("Ask() failed: %v", err)
	}

	for _, want := range []string{"Kai", "Yellow belt", "1200.5", "owes 850.25"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("system prompt missing %q:\n%s", want, gotPrompt)
		}
	}
}

func TestAsk_EmptyMessageRejected(t *testing.T) {
	svc := NewService(&MockLLM{}, &MockUserRepo{}, &MockAccountRepo{})

	if _, err := svc.Ask(context.Background(), 1, "   "); err == nil {
		t.Error("Ask() accepted an empty message")
	}
}
