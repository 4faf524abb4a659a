// Package cashback computes merchant rewards. Every merchant owns exactly
// one strategy, chosen at load time. Amounts are computed in the reference
// currency and converted into the paying account's currency before
// crediting.
package cashback

import (
	"fmt"

	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/exchange"
)

// Engine evaluates cashback for payments to merchants.
type Engine struct {
	graph       *exchange.Graph
	refCurrency string
}

// New creates a cashback engine over the given rate graph.
func New(graph *exchange.Graph, refCurrency string) *Engine {
	return &Engine{graph: graph, refCurrency: refCurrency}
}

// Apply processes a payment of amountRef (already in the reference currency)
// from acc to merchant and credits any reward. It returns the amount
// credited in the account's currency, zero if the payment earned nothing.
func (e *Engine) Apply(user *domain.User, acc *domain.Account, m *domain.Merchant, amountRef float64) (float64, error) {
	switch m.Strategy {
	case domain.StrategyTransactionCount:
		return e.applyTransactionCount(acc, m, amountRef)
	case domain.StrategySpendingThreshold:
		return e.applySpendingThreshold(user, acc, m, amountRef)
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, m.Strategy)
	}
}

// applyTransactionCount counts every payment toward the merchant's
// per-account counter, then grants the category's one-shot discount once the
// counter reaches the category threshold.
func (e *Engine) applyTransactionCount(acc *domain.Account, m *domain.Merchant, amountRef float64) (float64, error) {
	m.TxnCount[acc.IBAN]++

	if !e.categoryEligible(acc, m) {
		return 0, nil
	}
	return e.creditCategory(acc, m.Category, amountRef)
}

// applySpendingThreshold accumulates lifetime spend and pays from the user's
// plan ladder once past the first threshold. The one-shot category path is
// checked first when still armed.
func (e *Engine) applySpendingThreshold(user *domain.User, acc *domain.Account, m *domain.Merchant, amountRef float64) (float64, error) {
	acc.SpendingAmount += amountRef

	if e.categoryEligible(acc, m) {
		return e.creditCategory(acc, m.Category, amountRef)
	}

	if acc.SpendingAmount < domain.FirstThreshold {
		return 0, nil
	}

	// Ladder rate over the post-increment cumulative spend.
	rate := user.Plan.CashbackRate(acc.SpendingAmount)
	credited, err := e.graph.Convert(amountRef*rate, e.refCurrency, acc.Currency)
	if err != nil {
		return 0, err
	}
	acc.Balance += credited
	return credited, nil
}

// categoryEligible reports whether the account may still earn the merchant's
// category discount and has passed the required transaction count.
func (e *Engine) categoryEligible(acc *domain.Account, m *domain.Merchant) bool {
	required, armed := acc.RequiredTxns[m.Category]
	if !armed {
		return false
	}
	return m.TxnCount[acc.IBAN] >= required
}

// creditCategory grants the category's fixed-rate discount and permanently
// disarms the category for this account.
func (e *Engine) creditCategory(acc *domain.Account, category string, amountRef float64) (float64, error) {
	rate := acc.Discounts[category]
	credited, err := e.graph.Convert(amountRef*rate, e.refCurrency, acc.Currency)
	if err != nil {
		return 0, err
	}
	acc.Balance += credited
	delete(acc.RequiredTxns, category)
	delete(acc.Discounts, category)
	return credited, nil
}
