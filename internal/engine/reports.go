package engine

import (
	"sort"

	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/journal"
)

// ─── Report Views ───────────────────────────────────────────────────────────
// Output payloads are dedicated view structs so the ledger types never grow
// JSON tags of their own.

type cardView struct {
	CardNumber string `json:"cardNumber"`
	Status     string `json:"status"`
}

type accountView struct {
	IBAN     string     `json:"IBAN"`
	Balance  float64    `json:"balance"`
	Currency string     `json:"currency"`
	Type     string     `json:"type"`
	Cards    []cardView `json:"cards"`
}

type userView struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Accounts  []accountView `json:"accounts"`
}

func viewOfAccount(acc *domain.Account) accountView {
	v := accountView{
		IBAN:     acc.IBAN,
		Balance:  acc.Balance,
		Currency: acc.Currency,
		Type:     string(acc.Type),
		Cards:    []cardView{},
	}
	for _, c := range acc.Cards {
		v.Cards = append(v.Cards, cardView{CardNumber: c.Number, Status: string(c.Status)})
	}
	return v
}

func (e *Engine) printUsers(cmd *Command) *Output {
	views := []userView{}
	for _, u := range e.registry.Users() {
		uv := userView{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Accounts:  []accountView{},
		}
		for _, acc := range u.Accounts {
			uv.Accounts = append(uv.Accounts, viewOfAccount(acc))
		}
		views = append(views, uv)
	}
	return &Output{Command: cmd.Kind, Output: views, Timestamp: cmd.Timestamp}
}

func (e *Engine) printTransactions(cmd *Command) *Output {
	user, err := e.registry.UserByEmail(cmd.Email)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	entries := append([]journal.Entry(nil), user.Journal.All()...)
	// Split settlements are journaled at resolution time under their creation
	// timestamp, so the log is not globally ordered.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
	return &Output{Command: cmd.Kind, Output: entries, Timestamp: cmd.Timestamp}
}

// ─── Account Reports ────────────────────────────────────────────────────────

type reportView struct {
	IBAN         string          `json:"IBAN"`
	Balance      float64         `json:"balance"`
	Currency     string          `json:"currency"`
	Transactions []journal.Entry `json:"transactions"`
}

func (e *Engine) report(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	return &Output{
		Command: cmd.Kind,
		Output: reportView{
			IBAN:         acc.IBAN,
			Balance:      acc.Balance,
			Currency:     acc.Currency,
			Transactions: acc.Journal.FilterRange(cmd.StartTimestamp, cmd.EndTimestamp),
		},
		Timestamp: cmd.Timestamp,
	}
}

type merchantTotalView struct {
	Merchant string  `json:"commerciant"`
	Total    float64 `json:"total"`
}

type spendingsView struct {
	IBAN         string              `json:"IBAN"`
	Balance      float64             `json:"balance"`
	Currency     string              `json:"currency"`
	Transactions []journal.Entry     `json:"transactions"`
	Merchants    []merchantTotalView `json:"commerciants"`
}

func (e *Engine) spendingsReport(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Type == domain.AccountSavings {
		type notSupported struct {
			Error string `json:"error"`
		}
		return &Output{
			Command:   cmd.Kind,
			Output:    notSupported{Error: "This kind of report is not supported for a saving account"},
			Timestamp: cmd.Timestamp,
		}
	}

	payments := []journal.Entry{}
	totals := map[string]float64{}
	for _, entry := range acc.Journal.FilterRange(cmd.StartTimestamp, cmd.EndTimestamp) {
		if entry.Description != "Card payment" {
			continue
		}
		payments = append(payments, entry)
		if amount, ok := entry.Amount.(float64); ok {
			totals[entry.Merchant] += amount
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	merchants := []merchantTotalView{}
	for _, name := range names {
		merchants = append(merchants, merchantTotalView{Merchant: name, Total: totals[name]})
	}

	return &Output{
		Command: cmd.Kind,
		Output: spendingsView{
			IBAN:         acc.IBAN,
			Balance:      acc.Balance,
			Currency:     acc.Currency,
			Transactions: payments,
			Merchants:    merchants,
		},
		Timestamp: cmd.Timestamp,
	}
}

// ─── Business Report ────────────────────────────────────────────────────────

type associateView struct {
	Username  string  `json:"username"`
	Spent     float64 `json:"spent"`
	Deposited float64 `json:"deposited"`
}

type businessTxnView struct {
	IBAN           string          `json:"IBAN"`
	Balance        float64         `json:"balance"`
	Currency       string          `json:"currency"`
	SpendingLimit  float64         `json:"spending limit"`
	DepositLimit   float64         `json:"deposit limit"`
	StatisticsType string          `json:"statistics type"`
	Managers       []associateView `json:"managers"`
	Employees      []associateView `json:"employees"`
	TotalSpent     float64         `json:"total spent"`
	TotalDeposited float64         `json:"total deposited"`
}

type merchantReceivedView struct {
	Merchant      string   `json:"commerciant"`
	TotalReceived float64  `json:"total received"`
	Managers      []string `json:"managers"`
	Employees     []string `json:"employees"`
}

type businessMerchantView struct {
	IBAN           string                 `json:"IBAN"`
	Balance        float64                `json:"balance"`
	Currency       string                 `json:"currency"`
	SpendingLimit  float64                `json:"spending limit"`
	DepositLimit   float64                `json:"deposit limit"`
	StatisticsType string                 `json:"statistics type"`
	Merchants      []merchantReceivedView `json:"commerciants"`
}

func (e *Engine) businessReport(cmd *Command) *Output {
	acc, err := e.registry.Account(cmd.Account)
	if err != nil {
		return e.reportError(cmd, err.Error())
	}
	if acc.Business == nil {
		return e.reportError(cmd, domain.ErrNotBusinessAccount.Error())
	}

	if cmd.Type == "commerciant" {
		return e.businessMerchantReport(cmd, acc)
	}
	return e.businessTransactionReport(cmd, acc)
}

func (e *Engine) businessTransactionReport(cmd *Command, acc *domain.Account) *Output {
	view := businessTxnView{
		IBAN:           acc.IBAN,
		Balance:        acc.Balance,
		Currency:       acc.Currency,
		SpendingLimit:  acc.Business.SpendingLimit,
		DepositLimit:   acc.Business.DepositLimit,
		StatisticsType: "transaction",
		Managers:       []associateView{},
		Employees:      []associateView{},
	}

	// Participants keeps grant order, so the report is deterministic.
	for _, email := range acc.Business.Participants {
		role := acc.Business.Roles[email]
		if role == domain.RoleOwner {
			continue
		}
		av := associateView{
			Username:  e.displayName(email),
			Spent:     acc.Business.SpentBy[email],
			Deposited: acc.Business.DepositedBy[email],
		}
		view.TotalSpent += av.Spent
		view.TotalDeposited += av.Deposited
		if role == domain.RoleManager {
			view.Managers = append(view.Managers, av)
		} else {
			view.Employees = append(view.Employees, av)
		}
	}
	return &Output{Command: cmd.Kind, Output: view, Timestamp: cmd.Timestamp}
}

func (e *Engine) businessMerchantReport(cmd *Command, acc *domain.Account) *Output {
	view := businessMerchantView{
		IBAN:           acc.IBAN,
		Balance:        acc.Balance,
		Currency:       acc.Currency,
		SpendingLimit:  acc.Business.SpendingLimit,
		DepositLimit:   acc.Business.DepositLimit,
		StatisticsType: "commerciant",
		Merchants:      []merchantReceivedView{},
	}

	names := make([]string, 0, len(acc.Business.MerchantTotals))
	for name := range acc.Business.MerchantTotals {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mv := merchantReceivedView{
			Merchant:      name,
			TotalReceived: acc.Business.MerchantTotals[name],
			Managers:      []string{},
			Employees:     []string{},
		}
		for _, email := range acc.Business.MerchantPayers[name] {
			switch acc.Business.Roles[email] {
			case domain.RoleManager:
				mv.Managers = append(mv.Managers, e.displayName(email))
			case domain.RoleEmployee:
				mv.Employees = append(mv.Employees, e.displayName(email))
			}
		}
		view.Merchants = append(view.Merchants, mv)
	}
	return &Output{Command: cmd.Kind, Output: view, Timestamp: cmd.Timestamp}
}

// displayName renders an associate as "Last First" for report rows.
func (e *Engine) displayName(email string) string {
	u, err := e.registry.UserByEmail(email)
	if err != nil {
		return email
	}
	return u.LastName + " " + u.FirstName
}
