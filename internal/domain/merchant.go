package domain

import "fmt"

// ─── Merchants ──────────────────────────────────────────────────────────────

// StrategyKind selects a merchant's cashback strategy at load time.
type StrategyKind string

const (
	StrategyTransactionCount  StrategyKind = "nrOfTransactions"
	StrategySpendingThreshold StrategyKind = "spendingThreshold"
)

// ParseStrategy validates a strategy-kind field. Unknown kinds are a
// bootstrap error.
func ParseStrategy(kind string) (StrategyKind, error) {
	switch StrategyKind(kind) {
	case StrategyTransactionCount, StrategySpendingThreshold:
		return StrategyKind(kind), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, kind)
	}
}

// Merchant is a payment recipient with one cashback strategy and a
// per-payer-account transaction counter.
type Merchant struct {
	Name     string
	ID       int
	Account  string // receiving IBAN
	Category string
	Strategy StrategyKind

	// TxnCount tracks payments per payer account IBAN, incremented on every
	// payment regardless of cashback eligibility.
	TxnCount map[string]int
}

// NewMerchant creates a merchant from bootstrap data.
func NewMerchant(name string, id int, account, category string, strategy StrategyKind) *Merchant {
	return &Merchant{
		Name:     name,
		ID:       id,
		Account:  account,
		Category: category,
		Strategy: strategy,
		TxnCount: make(map[string]int),
	}
}
