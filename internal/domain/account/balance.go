package account

import "github.com/shopspring/decimal"

// BalanceView is the single interpretation of a stored signed balance.
// The sign convention differs by account type: for asset accounts a negative
// balance is an overdraft, for credit accounts it is the amount owed.
type BalanceView struct {
	// Amount is the non-negative display magnitude, rounded to cents.
	Amount decimal.Decimal `json:"amount"`
	// Owed is true when the amount is money the user owes (credit balance).
	Owed bool `json:"owed"`
	// Overdrawn is true when an asset account has gone negative.
	Overdrawn bool `json:"overdrawn"`
}

// InterpretBalance centralizes the per-type sign convention so display and
// chat-context code never re-implement it.
func InterpretBalance(accountType string, raw float64) BalanceView {
	amount := decimal.NewFromFloat(raw).Round(2)

	switch accountType {
	case "credit", "loan":
		if amount.IsNegative() {
			return BalanceView{Amount: amount.Neg(), Owed: true}
		}
		return BalanceView{Amount: amount}
	default:
		// depository and other asset accounts
		if amount.IsNegative() {
			return BalanceView{Amount: amount.Neg(), Overdrawn: true}
		}
		return BalanceView{Amount: amount}
	}
}
