package engine

import (
	"github.com/mintebank/minte/internal/domain"
)

// ─── Business Account Administration ────────────────────────────────────────

func (e *Engine) addNewBusinessAssociate(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Business == nil {
		return e.reportError(cmd, domain.ErrNotBusinessAccount.Error())
	}
	if _, err := e.registry.UserByEmail(cmd.Email); err != nil {
		return e.reportError(cmd, err.Error())
	}

	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	// Granting to an existing participant is a silent no-op.
	acc.GrantRole(cmd.Email, role)
	return nil
}

func (e *Engine) changeSpendingLimit(cmd *Command) *Output {
	return e.changeLimit(cmd, domain.TxnSpending)
}

func (e *Engine) changeDepositLimit(cmd *Command) *Output {
	return e.changeLimit(cmd, domain.TxnDeposit)
}

// changeLimit applies a limit mutation. A caller with no role on the account
// is ignored silently; a caller whose role lacks the permission gets a
// reported error.
func (e *Engine) changeLimit(cmd *Command, kind domain.TxnKind) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Business == nil {
		return e.reportError(cmd, domain.ErrNotBusinessAccount.Error())
	}

	role, ok := acc.RoleOf(cmd.Email)
	if !ok {
		return nil
	}
	if !role.CanSetLimits() {
		if kind == domain.TxnSpending {
			return e.reportError(cmd, "You must be owner in order to change spending limit.")
		}
		return e.reportError(cmd, "You must be owner in order to change deposit limit.")
	}

	if kind == domain.TxnSpending {
		acc.Business.SpendingLimit = cmd.Amount
	} else {
		acc.Business.DepositLimit = cmd.Amount
	}
	return nil
}
