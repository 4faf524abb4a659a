package engine

import (
	"fmt"
	"time"

	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/journal"
)

// ─── Account Operations ─────────────────────────────────────────────────────

func (e *Engine) addAccount(cmd *Command) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	acc := e.registry.CreateAccount(user, cmd.Currency, domain.AccountType(cmd.AccountType))
	switch {
	case acc.Savings != nil:
		acc.Savings.InterestRate = cmd.InterestRate
	case acc.Business != nil:
		// Initial limits are the configured reference-currency amount,
		// converted into the account's currency.
		limit, convErr := e.graph.Convert(e.cfg.BusinessLimit, e.cfg.ReferenceCurrency, acc.Currency)
		if convErr == nil {
			acc.Business.SpendingLimit = limit
			acc.Business.DepositLimit = limit
		}
	}

	e.logBoth(user, acc, journal.New(cmd.Timestamp, "New account created").Build())
	return nil
}

func (e *Engine) addFunds(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	if acc.Type == domain.AccountBusiness {
		role, ok := acc.RoleOf(cmd.Email)
		if !ok {
			return nil
		}
		// An employee depositing above the limit is silently refused:
		// no balance change, no journal entry.
		if !role.CanTransact(cmd.Amount, domain.TxnDeposit, acc) {
			return nil
		}
		acc.Business.DepositedBy[cmd.Email] += cmd.Amount
	}

	e.registry.Credit(acc, cmd.Amount)
	return nil
}

func (e *Engine) setMinimumBalance(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	acc.MinBalance = cmd.MinBalance
	return nil
}

func (e *Engine) setAlias(cmd *Command) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	acc, ok := user.AccountsByID[cmd.Account]
	if !ok {
		return e.reportError(cmd, domain.ErrAccountNotFound.Error())
	}
	e.registry.SetAlias(user, acc, cmd.Alias)
	return nil
}

func (e *Engine) addInterest(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	user, err := e.registry.OwnerOf(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	interest, err := acc.AddInterest()
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	e.logBoth(user, acc, journal.New(cmd.Timestamp, "Interest rate income").
		Amount(interest).
		Currency(acc.Currency).
		Build())
	return nil
}

func (e *Engine) changeInterestRate(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	user, err := e.registry.OwnerOf(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	if err := acc.SetInterestRate(cmd.InterestRate); err != nil {
		return e.reportError(cmd, err.Error())
	}

	desc := fmt.Sprintf("Interest rate of the account changed to %.2f", cmd.InterestRate)
	e.logBoth(user, acc, journal.New(cmd.Timestamp, desc).Build())
	return nil
}

func (e *Engine) withdrawSavings(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	user, err := e.registry.OwnerOf(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Savings == nil {
		return e.reportError(cmd, domain.ErrNotSavingsAccount.Error())
	}

	if user.Age(time.Now()) < e.cfg.MinimumAge {
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "You don't have the minimum age required.").Build())
		return nil
	}

	receiver := user.ClassicAccountIn(cmd.Currency)
	if receiver == nil {
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "You do not have a classic account.").Build())
		return nil
	}

	amountToWithdraw, err := e.graph.Convert(cmd.Amount, cmd.Currency, acc.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Balance < amountToWithdraw {
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "Insufficient funds").Build())
		return nil
	}

	acc.Balance -= amountToWithdraw
	receiver.Balance += cmd.Amount

	entry := journal.New(cmd.Timestamp, "Savings withdrawal").
		SavingsIBAN(acc.IBAN).
		ClassicIBAN(receiver.IBAN).
		Amount(cmd.Amount).
		Build()
	e.logUser(user, entry)
	e.logAccount(acc, entry)
	e.logAccount(receiver, entry)
	return nil
}

func (e *Engine) deleteAccount(cmd *Command) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	acc, ok := user.AccountsByID[cmd.Account]
	if !ok {
		return e.reportError(cmd, domain.ErrAccountNotFound.Error())
	}

	type deleteBody struct {
		Error     string `json:"error,omitempty"`
		Success   string `json:"success,omitempty"`
		Timestamp int    `json:"timestamp"`
	}

	// Deletion is refused while funds remain; that is a journaled outcome,
	// not a hard error.
	if acc.Balance > 0 {
		e.logBoth(user, acc, journal.New(cmd.Timestamp,
			"Account couldn't be deleted - there are funds remaining").Build())
		return &Output{
			Command:   cmd.Kind,
			Output:    deleteBody{Error: "Account couldn't be deleted - see transactions for details", Timestamp: cmd.Timestamp},
			Timestamp: cmd.Timestamp,
		}
	}

	for _, card := range append([]*domain.Card(nil), acc.Cards...) {
		e.registry.DetachCard(user, acc, card)
	}
	e.registry.DeleteAccount(user, acc)
	return &Output{
		Command:   cmd.Kind,
		Output:    deleteBody{Success: "Account deleted", Timestamp: cmd.Timestamp},
		Timestamp: cmd.Timestamp,
	}
}
