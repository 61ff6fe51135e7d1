// Package chat provides the AI money-coach conversation service. It
// assembles a financial-context prompt and delegates to an LLM provider,
// degrading to a fixed response pool when no provider is available.
package chat

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"doughjo/internal/domain/account"
	"doughjo/internal/domain/gamify"
	"doughjo/internal/domain/user"
)

// LLMClient is the chat-completion collaborator. Configured reports
// whether credentials are present; Complete returns free text.
type LLMClient interface {
	Configured() bool
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// fallbackResponses are served whenever the LLM is unavailable. The
// degradation is silent: the end user never sees a provider error.
var fallbackResponses = []string{
	"A good first move is the 50/30/20 split: needs, wants, savings. Where does your spending land today?",
	"Small, steady contributions beat occasional big ones. Even $20 a week into savings compounds over time.",
	"Before investing, build an emergency fund covering 3-6 months of expenses. That's your financial white belt.",
	"Paying down high-interest debt is usually the best guaranteed return you can get. Credit cards first.",
	"Track your spending for one month before changing anything. You can't improve what you can't see.",
	"Automate your savings so the decision is made once, not every payday.",
}

// Service answers coach questions for a user.
type Service struct {
	llm         LLMClient
	userRepo    user.Repository
	accountRepo account.Repository
}

// NewService creates a new chat service
func NewService(llm LLMClient, userRepo user.Repository, accountRepo account.Repository) *Service {
	return &Service{llm: llm, userRepo: userRepo, accountRepo: accountRepo}
}

// Ask answers one user message. LLM failures degrade to the fallback pool;
// this operation never returns a provider error to the caller.
func (s *Service) Ask(ctx context.Context, userID int64, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message is required")
	}

	if s.llm == nil || !s.llm.Configured() {
		return fallback(), nil
	}

	prompt, err := s.buildSystemPrompt(ctx, userID)
	if err != nil {
		log.Printf("User %d: failed to assemble chat context, using generic prompt: %v", userID, err)
		prompt = basePrompt
	}

	answer, err := s.llm.Complete(ctx, prompt, message)
	if err != nil {
		log.Printf("User %d: LLM call failed, serving fallback: %v", userID, err)
		return fallback(), nil
	}
	return answer, nil
}

const basePrompt = "You are DoughJo Sensei, a friendly personal-finance coach. " +
	"Give practical, encouraging advice in two or three short paragraphs. " +
	"Never recommend specific securities."

// buildSystemPrompt templates the user's financial data into the system
// prompt: belt rank, XP and per-account balances with the sign convention
// already interpreted.
func (s *Service) buildSystemPrompt(ctx context.Context, userID int64) (string, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	accounts, err := s.accountRepo.ListByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load accounts: %w", err)
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	fmt.Fprintf(&b, "\n\nStudent profile: %s, %s belt, level %d (%d XP).",
		u.Name, gamify.BeltForXP(u.XP), gamify.LevelForXP(u.XP), u.XP)

	if len(accounts) == 0 {
		b.WriteString("\nThe student has not linked any bank accounts yet.")
		return b.String(), nil
	}

	b.WriteString("\nLinked accounts:")
	for _, a := range accounts {
		view := account.InterpretBalance(a.AccountType, a.Balance)
		switch {
		case view.Owed:
			fmt.Fprintf(&b, "\n- %s (%s, %s): owes %s %s", a.Name, a.InstitutionName, a.AccountType, view.Amount, a.Currency)
		case view.Overdrawn:
			fmt.Fprintf(&b, "\n- %s (%s, %s): overdrawn by %s %s", a.Name, a.InstitutionName, a.AccountType, view.Amount, a.Currency)
		default:
			fmt.Fprintf(&b, "\n- %s (%s, %s): %s %s available", a.Name, a.InstitutionName, a.AccountType, view.Amount, a.Currency)
		}
	}
	return b.String(), nil
}

func fallback() string {
	return fallbackResponses[rand.Intn(len(fallbackResponses))]
}
