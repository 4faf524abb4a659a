package engine

import (
	"fmt"

	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/journal"
	"github.com/mintebank/minte/internal/metrics"
	"github.com/mintebank/minte/internal/split"
)

// ─── Card Payments ──────────────────────────────────────────────────────────

func (e *Engine) payOnline(cmd *Command) *Output {
	// A zero-amount payment is a no-op before any lookup runs, so it stays
	// silent even when the card number is bogus.
	if cmd.Amount == 0 {
		return nil
	}

	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	acc, err := e.registry.AccountOfCard(cmd.CardNumber)
	if err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}
	owner, err := e.registry.OwnerOf(acc.IBAN)
	if err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}
	if owner != user {
		if _, ok := acc.RoleOf(cmd.Email); !ok {
			return e.reportError(cmd, domain.ErrCardNotFound.Error())
		}
	}
	card := acc.FindCard(cmd.CardNumber)
	if card.Status == domain.CardFrozen {
		metrics.PaymentsRefused.Inc()
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "The card is frozen").Build())
		return nil
	}

	amount, err := e.graph.Convert(cmd.Amount, cmd.Currency, acc.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	amountRef, err := e.toReference(amount, acc.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	fee := owner.Plan.FeeRate(amountRef) * amount

	if acc.Type == domain.AccountBusiness {
		role, _ := acc.RoleOf(cmd.Email)
		if !role.CanTransact(amount, domain.TxnSpending, acc) {
			metrics.PaymentsRefused.Inc()
			return nil
		}
	}

	if acc.Balance < amount+fee {
		metrics.PaymentsRefused.Inc()
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "Insufficient funds").Build())
		return nil
	}

	acc.Balance -= amount + fee
	metrics.PaymentsSettled.Inc()
	e.logBoth(user, acc, journal.New(cmd.Timestamp, "Card payment").
		Amount(amount).
		Merchant(cmd.Merchant).
		Build())

	if acc.Type == domain.AccountBusiness && user != owner {
		acc.Business.SpentBy[cmd.Email] += amount
	}
	acc.RecordMerchantPayment(cmd.Merchant, cmd.Email, amount)

	if m, ok := e.registry.MerchantByName(cmd.Merchant); ok {
		if credited, err := e.cashback.Apply(owner, acc, m, amountRef); err == nil && credited > 0 {
			metrics.CashbackGranted.Add(credited)
		}
	}

	e.trackQualifying(owner, acc, amountRef, cmd.Timestamp)

	if card.OneTime {
		old, fresh := e.registry.ReplaceCardNumber(owner, acc, card)
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "The card has been destroyed").
			Card(old).
			CardHolder(cmd.Email).
			Account(acc.IBAN).
			Build())
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "New card created").
			Card(fresh).
			CardHolder(cmd.Email).
			Account(acc.IBAN).
			Build())
	}
	return nil
}

// trackQualifying counts qualifying card payments made while the owner is on
// the silver plan and applies the automatic gold upgrade on both journals
// when the count is reached. Payments made on other tiers never count.
func (e *Engine) trackQualifying(owner *domain.User, acc *domain.Account, amountRef float64, timestamp int) {
	if owner.Plan != domain.PlanSilver {
		return
	}
	if amountRef < domain.QualifyingTxnMin {
		return
	}
	acc.QualifyingTxns++
	if !owner.Plan.AutoUpgrade(acc.QualifyingTxns) {
		return
	}
	owner.Plan = domain.PlanGold
	e.logBoth(owner, acc, journal.New(timestamp, "Upgrade plan").
		AccountIBAN(acc.IBAN).
		NewPlanType(domain.PlanGold.String()).
		Build())
}

// ─── Transfers ──────────────────────────────────────────────────────────────

func (e *Engine) sendMoney(cmd *Command) *Output {
	sender, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}
	senderUser, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}

	// A transfer to a merchant's receiving IBAN is a merchant payment: the
	// sender pays fee and earns cashback, and no receiving ledger exists.
	if m, ok := e.registry.MerchantByAccount(cmd.Receiver); ok {
		return e.sendToMerchant(cmd, senderUser, sender, m)
	}

	receiver, err := e.registry.Account(cmd.Receiver)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}
	receiverUser, err := e.registry.OwnerOf(cmd.Receiver)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}
	ownerUser, err := e.registry.OwnerOf(sender.IBAN)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}

	amountRef, err := e.toReference(cmd.Amount, sender.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	fee := ownerUser.Plan.FeeRate(amountRef) * cmd.Amount

	if sender.Type == domain.AccountBusiness {
		role, ok := sender.RoleOf(cmd.Email)
		if !ok {
			return nil
		}
		if !role.CanTransact(cmd.Amount, domain.TxnSpending, sender) {
			metrics.PaymentsRefused.Inc()
			return nil
		}
	}

	if sender.Balance < cmd.Amount+fee {
		metrics.PaymentsRefused.Inc()
		e.logBoth(senderUser, sender, journal.New(cmd.Timestamp, "Insufficient funds").Build())
		return nil
	}

	received, err := e.graph.Convert(cmd.Amount, sender.Currency, receiver.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	sender.Balance -= cmd.Amount + fee
	receiver.Balance += received
	metrics.PaymentsSettled.Inc()

	if sender.Type == domain.AccountBusiness && senderUser != ownerUser {
		sender.Business.SpentBy[cmd.Email] += cmd.Amount
	}

	e.logBoth(senderUser, sender, journal.New(cmd.Timestamp, cmd.Description).
		AmountText(fmt.Sprintf("%g %s", cmd.Amount, sender.Currency)).
		Sender(sender.IBAN).
		Receiver(receiver.IBAN).
		TransferType("sent").
		Build())
	e.logBoth(receiverUser, receiver, journal.New(cmd.Timestamp, cmd.Description).
		AmountText(fmt.Sprintf("%g %s", received, receiver.Currency)).
		Sender(sender.IBAN).
		Receiver(receiver.IBAN).
		TransferType("received").
		Build())
	return nil
}

func (e *Engine) sendToMerchant(cmd *Command, user *domain.User, sender *domain.Account, m *domain.Merchant) *Output {
	owner, err := e.registry.OwnerOf(sender.IBAN)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}
	amountRef, err := e.toReference(cmd.Amount, sender.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	fee := owner.Plan.FeeRate(amountRef) * cmd.Amount

	if sender.Balance < cmd.Amount+fee {
		metrics.PaymentsRefused.Inc()
		e.logBoth(user, sender, journal.New(cmd.Timestamp, "Insufficient funds").Build())
		return nil
	}

	sender.Balance -= cmd.Amount + fee
	metrics.PaymentsSettled.Inc()
	e.logBoth(user, sender, journal.New(cmd.Timestamp, cmd.Description).
		AmountText(fmt.Sprintf("%g %s", cmd.Amount, sender.Currency)).
		Sender(sender.IBAN).
		Receiver(m.Account).
		TransferType("sent").
		Build())

	if credited, err := e.cashback.Apply(owner, sender, m, amountRef); err == nil && credited > 0 {
		metrics.CashbackGranted.Add(credited)
	}
	return nil
}

func (e *Engine) cashWithdrawal(cmd *Command) *Output {
	if _, err := e.registry.Card(cmd.CardNumber); err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, domain.ErrUserNotFound.Error())
	}
	acc, err := e.registry.AccountOfCard(cmd.CardNumber)
	if err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}
	owner, err := e.registry.OwnerOf(acc.IBAN)
	if err != nil {
		return e.reportError(cmd, domain.ErrCardNotFound.Error())
	}

	card := acc.FindCard(cmd.CardNumber)
	if card.Status == domain.CardFrozen {
		metrics.PaymentsRefused.Inc()
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "The card is frozen").Build())
		return nil
	}

	// The requested amount is expressed in the reference currency.
	amount, err := e.graph.Convert(cmd.Amount, e.cfg.ReferenceCurrency, acc.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	fee := owner.Plan.FeeRate(cmd.Amount) * amount

	if acc.Balance < amount+fee {
		metrics.PaymentsRefused.Inc()
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "Insufficient funds").Build())
		return nil
	}

	acc.Balance -= amount + fee
	metrics.PaymentsSettled.Inc()
	e.logBoth(user, acc, journal.New(cmd.Timestamp,
		fmt.Sprintf("Cash withdrawal of %.1f", cmd.Amount)).
		Amount(cmd.Amount).
		Build())
	return nil
}

// ─── Plan Upgrades ──────────────────────────────────────────────────────────

func (e *Engine) upgradePlan(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, domain.ErrAccountNotFound.Error())
	}
	user, err := e.registry.OwnerOf(cmd.Account)
	if err != nil {
		return e.reportError(cmd, domain.ErrAccountNotFound.Error())
	}

	target, err := domain.ParsePlan(cmd.NewPlanType)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}

	feeRef, refusal := user.Plan.UpgradeFee(target)
	if refusal != "" {
		e.logBoth(user, acc, journal.New(cmd.Timestamp, refusal).Build())
		return nil
	}

	fee, err := e.graph.Convert(feeRef, e.cfg.ReferenceCurrency, acc.Currency)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Balance < fee {
		e.logBoth(user, acc, journal.New(cmd.Timestamp, "Insufficient funds").Build())
		return nil
	}

	acc.Balance -= fee
	user.Plan = target
	e.logBoth(user, acc, journal.New(cmd.Timestamp, "Upgrade plan").
		AccountIBAN(acc.IBAN).
		NewPlanType(target.String()).
		Build())
	return nil
}

// ─── Split Payments ─────────────────────────────────────────────────────────

func (e *Engine) splitPayment(cmd *Command) *Output {
	kind := split.Kind(cmd.SplitKind)
	if _, err := e.splits.Create(kind, cmd.Accounts, cmd.Amount, cmd.AmountForUsers, cmd.Currency, cmd.Timestamp); err != nil {
		return e.reportError(cmd, domain.ErrAccountNotFound.Error())
	}
	return nil
}

func (e *Engine) acceptSplitPayment(cmd *Command) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	outcome := e.splits.Accept(user.Email, split.Kind(cmd.SplitKind))
	if outcome == nil || !outcome.Resolved {
		return nil
	}
	if outcome.Settled {
		metrics.SplitSettled.Inc()
	} else {
		metrics.SplitCancelled.Inc()
	}
	e.journalSplitOutcome(outcome)
	return nil
}

func (e *Engine) rejectSplitPayment(cmd *Command) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	outcome := e.splits.Reject(user.Email, split.Kind(cmd.SplitKind))
	if outcome == nil {
		return nil
	}
	metrics.SplitCancelled.Inc()
	e.journalSplitOutcome(outcome)
	return nil
}

// journalSplitOutcome appends one shared entry to every participant user and
// account, carrying the failure text when the payment did not settle. Entries
// use the request's creation timestamp so reports place the payment where it
// was initiated.
func (e *Engine) journalSplitOutcome(outcome *split.Outcome) {
	req := outcome.Request
	b := journal.New(req.Timestamp, fmt.Sprintf("Split payment of %.2f %s", req.Total, req.Currency)).
		Currency(req.Currency).
		SplitType(string(req.Kind)).
		InvolvedAccounts(req.Accounts)
	if req.Kind == split.KindCustom {
		b.AmountForUsers(req.Amounts)
	} else {
		b.Amount(req.Amounts[0])
	}
	if outcome.Error != "" {
		b.Error(outcome.Error)
	}
	entry := b.Build()

	for _, iban := range req.Accounts {
		acc, err := e.registry.Account(iban)
		if err != nil {
			continue
		}
		e.logAccount(acc, entry)
		if owner, err := e.registry.OwnerOf(iban); err == nil {
			e.logUser(owner, entry)
		}
	}
}
