package domain

import (
	"fmt"
	"strings"
)

// ─── Business Roles ─────────────────────────────────────────────────────────
// Shared (business) accounts attach a role to each participant. The
// permission set is fixed and finite, so roles are a closed enum with
// capability methods.

// Role is a participant's permission level on a business account.
type Role int

const (
	RoleOwner Role = iota
	RoleManager
	RoleEmployee
)

// TxnKind discriminates the two limit-checked operation families.
type TxnKind string

const (
	TxnSpending TxnKind = "spending"
	TxnDeposit  TxnKind = "deposit"
)

// ParseRole maps a role name to its enum value. Unknown names are a
// bootstrap error.
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(name) {
	case "owner":
		return RoleOwner, nil
	case "manager":
		return RoleManager, nil
	case "employee":
		return RoleEmployee, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
}

func (r Role) String() string {
	switch r {
	case RoleManager:
		return "manager"
	case RoleEmployee:
		return "employee"
	default:
		return "owner"
	}
}

// CanSetLimits reports whether the role may change spending/deposit limits.
// Only the owner can.
func (r Role) CanSetLimits() bool {
	return r == RoleOwner
}

// CanTransact reports whether the role may move the given amount. Owners and
// managers are unrestricted; employees are bounded by the account's limit for
// the transaction kind.
func (r Role) CanTransact(amount float64, kind TxnKind, acc *Account) bool {
	if r != RoleEmployee {
		return true
	}
	if acc.Business == nil {
		return true
	}
	if kind == TxnSpending {
		return amount <= acc.Business.SpendingLimit
	}
	return amount <= acc.Business.DepositLimit
}
