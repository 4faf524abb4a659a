// Package domain contains the pure business types of the ledger: users,
// accounts, cards, roles, plans and merchants. It depends on nothing but the
// journal ring — no infrastructure imports.
package domain

import "github.com/mintebank/minte/internal/journal"

// ─── Account Variants ───────────────────────────────────────────────────────
// Accounts are a tagged union: a shared core plus an optional variant payload.
// Operations that only apply to one variant dispatch on Type and return
// ErrNotSavingsAccount / ErrNotBusinessAccount for the rest, instead of the
// base-class no-op overrides the capability tables would otherwise need.

// AccountType discriminates the three account variants.
type AccountType string

const (
	AccountClassic  AccountType = "classic"
	AccountSavings  AccountType = "savings"
	AccountBusiness AccountType = "business"
)

// Category discount defaults: transactions required before a category
// becomes cashback-eligible, and the one-shot rate granted when it does.
var (
	CategoryThresholds = map[string]int{"Food": 2, "Clothes": 5, "Tech": 10}
	CategoryRates      = map[string]float64{"Food": 0.002, "Clothes": 0.005, "Tech": 0.01}
)

// SavingsData is the savings-variant payload.
type SavingsData struct {
	InterestRate float64
}

// BusinessData is the business-variant payload: the role map plus
// per-participant accumulators, limits and merchant statistics.
type BusinessData struct {
	Roles map[string]Role
	// Participants keeps role-grant order for deterministic reports.
	Participants   []string
	SpentBy        map[string]float64
	DepositedBy    map[string]float64
	SpendingLimit  float64
	DepositLimit   float64
	MerchantTotals map[string]float64
	MerchantPayers map[string][]string
}

// Account is a ledger account. IBAN and alias both resolve to the same
// object in every lookup index.
type Account struct {
	IBAN       string
	Balance    float64
	Currency   string
	Type       AccountType
	MinBalance float64
	Alias      string
	Cards      []*Card
	Journal    *journal.Log

	// Cashback state: cumulative spend for the tier ladder, and the
	// per-category one-shot eligibility maps.
	SpendingAmount float64
	RequiredTxns   map[string]int
	Discounts      map[string]float64

	// QualifyingTxns counts card payments at or above the qualifying
	// threshold, for the silver automatic upgrade.
	QualifyingTxns int

	// minLogged guards the one-time minimum-balance journal entry.
	minLogged bool

	Savings  *SavingsData
	Business *BusinessData
}

// NewAccount creates an account of the given variant with a zero balance and
// the full category discount map armed.
func NewAccount(iban, currency string, typ AccountType) *Account {
	acc := &Account{
		IBAN:         iban,
		Currency:     currency,
		Type:         typ,
		Journal:      journal.NewLog(),
		RequiredTxns: make(map[string]int, len(CategoryThresholds)),
		Discounts:    make(map[string]float64, len(CategoryRates)),
	}
	for cat, n := range CategoryThresholds {
		acc.RequiredTxns[cat] = n
	}
	for cat, rate := range CategoryRates {
		acc.Discounts[cat] = rate
	}
	switch typ {
	case AccountSavings:
		acc.Savings = &SavingsData{}
	case AccountBusiness:
		acc.Business = &BusinessData{
			Roles:          make(map[string]Role),
			SpentBy:        make(map[string]float64),
			DepositedBy:    make(map[string]float64),
			MerchantTotals: make(map[string]float64),
			MerchantPayers: make(map[string][]string),
		}
	}
	return acc
}

// RoleOf returns the caller's role on a business account. Non-business
// accounts carry no roles.
func (a *Account) RoleOf(email string) (Role, bool) {
	if a.Business == nil {
		return 0, false
	}
	r, ok := a.Business.Roles[email]
	return r, ok
}

// GrantRole attaches a role for email. Granting to an already-present
// participant is a silent no-op, not an overwrite.
func (a *Account) GrantRole(email string, role Role) {
	if a.Business == nil {
		return
	}
	if _, exists := a.Business.Roles[email]; exists {
		return
	}
	a.Business.Roles[email] = role
	a.Business.Participants = append(a.Business.Participants, email)
}

// AddInterest accrues one interest period on a savings account and returns
// the amount credited.
func (a *Account) AddInterest() (float64, error) {
	if a.Savings == nil {
		return 0, ErrNotSavingsAccount
	}
	interest := a.Balance * a.Savings.InterestRate
	a.Balance += interest
	return interest, nil
}

// SetInterestRate changes the rate on a savings account.
func (a *Account) SetInterestRate(rate float64) error {
	if a.Savings == nil {
		return ErrNotSavingsAccount
	}
	a.Savings.InterestRate = rate
	return nil
}

// RecordMerchantPayment tracks per-merchant statistics on a business account.
func (a *Account) RecordMerchantPayment(merchant, email string, amount float64) {
	if a.Business == nil {
		return
	}
	a.Business.MerchantTotals[merchant] += amount
	a.Business.MerchantPayers[merchant] = append(a.Business.MerchantPayers[merchant], email)
}

// MarkMinimumReached reports whether the one-time minimum-balance entry still
// needs journaling, and arms the guard.
func (a *Account) MarkMinimumReached() bool {
	if a.minLogged {
		return false
	}
	a.minLogged = true
	return true
}

// ─── Cards ──────────────────────────────────────────────────────────────────

// CardStatus is a card's lifecycle state.
type CardStatus string

const (
	CardActive CardStatus = "active"
	CardFrozen CardStatus = "frozen"
)

// Card is a payment card attached to exactly one account. A one-time card is
// retired and reissued under a new number after its first successful payment.
type Card struct {
	Number  string
	Status  CardStatus
	OneTime bool
}

// FindCard returns the account's card with the given number.
func (a *Account) FindCard(number string) *Card {
	for _, c := range a.Cards {
		if c.Number == number {
			return c
		}
	}
	return nil
}

// RemoveCard detaches a card from the account.
func (a *Account) RemoveCard(number string) {
	for i, c := range a.Cards {
		if c.Number == number {
			a.Cards = append(a.Cards[:i], a.Cards[i+1:]...)
			return
		}
	}
}
