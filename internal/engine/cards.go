package engine

import (
	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/journal"
)

// ─── Card Operations ────────────────────────────────────────────────────────

func (e *Engine) createCard(cmd *Command) *Output {
	return e.issueCard(cmd, false)
}

func (e *Engine) createOneTimeCard(cmd *Command) *Output {
	return e.issueCard(cmd, true)
}

// issueCard attaches a card to the named account. On a business account any
// participant may issue; on personal accounts only the owner.
func (e *Engine) issueCard(cmd *Command, oneTime bool) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return nil
	}
	owner, err := e.registry.OwnerOf(cmd.Account)
	if err != nil {
		return nil
	}
	if owner != user {
		if _, ok := acc.RoleOf(cmd.Email); !ok {
			return nil
		}
	}

	card := e.registry.AttachCard(owner, acc, oneTime)
	e.logBoth(user, acc, journal.New(cmd.Timestamp, "New card created").
		Card(card.Number).
		CardHolder(cmd.Email).
		Account(acc.IBAN).
		Build())
	return nil
}

func (e *Engine) deleteCard(cmd *Command) *Output {
	acc, err := e.registry.AccountOfCard(cmd.CardNumber)
	if err != nil {
		return nil
	}
	user, err := e.registry.UserOfCard(cmd.CardNumber)
	if err != nil {
		return nil
	}

	// A card guards access to remaining funds; it is only destroyed once the
	// account is empty.
	if acc.Balance > 0 {
		return nil
	}

	card := acc.FindCard(cmd.CardNumber)
	if card == nil {
		return nil
	}
	e.registry.DetachCard(user, acc, card)
	e.logBoth(user, acc, journal.New(cmd.Timestamp, "The card has been destroyed").
		Card(cmd.CardNumber).
		CardHolder(cmd.Email).
		Account(acc.IBAN).
		Build())
	return nil
}

func (e *Engine) checkCardStatus(cmd *Command) *Output {
	if _, err := e.registry.Card(cmd.CardNumber); err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}
	acc, err := e.registry.AccountOfCard(cmd.CardNumber)
	if err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}
	user, err := e.registry.UserOfCard(cmd.CardNumber)
	if err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}

	if e.registry.FreezeCardsIfAtMinimum(acc) {
		e.logBoth(user, acc, journal.New(cmd.Timestamp,
			"You have reached the minimum amount of funds, the card will be frozen").Build())
	}
	return nil
}
