package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// Lookup failures are caught at the command boundary and reported as output
// records; they never abort a run. Business-rule outcomes (insufficient funds,
// frozen card) are NOT errors — they are journal entries.

var (
	// Lookup errors
	ErrUserNotFound    = errors.New("User not found")
	ErrAccountNotFound = errors.New("Account not found")
	ErrCardNotFound    = errors.New("Card not found")

	// Variant mismatches
	ErrNotSavingsAccount  = errors.New("This is not a savings account")
	ErrNotBusinessAccount = errors.New("This is not a business account")

	// Conversion errors
	ErrUnknownCurrency  = errors.New("currency not supported")
	ErrNoConversionPath = errors.New("no conversion path found")

	// Bootstrap errors — fatal at startup
	ErrUnknownPlan     = errors.New("unknown plan name")
	ErrUnknownRole     = errors.New("unknown role name")
	ErrUnknownStrategy = errors.New("unknown cashback strategy")
)
