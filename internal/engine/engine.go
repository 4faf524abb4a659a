// Package engine wires the rules components together and executes the
// command stream. Commands are drained strictly in order; each one runs to
// completion or reports an error synchronously. Lookup failures become error
// output records, business-rule refusals become journal entries, and only
// bootstrap problems abort.
package engine

import (
	"fmt"
	"log"

	"github.com/mintebank/minte/internal/cashback"
	"github.com/mintebank/minte/internal/config"
	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/exchange"
	"github.com/mintebank/minte/internal/journal"
	"github.com/mintebank/minte/internal/ledger"
	"github.com/mintebank/minte/internal/metrics"
	"github.com/mintebank/minte/internal/split"
)

// Command is one parsed input record. Kind discriminates the operation; the
// remaining fields are operation-specific.
type Command struct {
	Kind      string `json:"command"`
	Timestamp int    `json:"timestamp"`

	Email        string  `json:"email,omitempty"`
	Account      string  `json:"account,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	AccountType  string  `json:"accountType,omitempty"`
	InterestRate float64 `json:"interestRate,omitempty"`
	CardNumber   string  `json:"cardNumber,omitempty"`
	Receiver     string  `json:"receiver,omitempty"`
	Description  string  `json:"description,omitempty"`
	Alias        string  `json:"alias,omitempty"`
	MinBalance   float64 `json:"minBalance,omitempty"`
	Merchant     string  `json:"commerciant,omitempty"`
	Role         string  `json:"role,omitempty"`
	NewPlanType  string  `json:"newPlanType,omitempty"`

	SplitKind      string    `json:"splitPaymentType,omitempty"`
	Accounts       []string  `json:"accounts,omitempty"`
	AmountForUsers []float64 `json:"amountForUsers,omitempty"`

	StartTimestamp int    `json:"startTimestamp,omitempty"`
	EndTimestamp   int    `json:"endTimestamp,omitempty"`
	Type           string `json:"type,omitempty"`
}

// Output is the result record produced for reporting commands and reported
// errors. Action commands that succeed produce nothing.
type Output struct {
	Command   string `json:"command"`
	Output    any    `json:"output"`
	Timestamp int    `json:"timestamp"`
}

// errBody is the payload of a reported lookup failure.
type errBody struct {
	Timestamp   int    `json:"timestamp"`
	Description string `json:"description"`
}

// AuditSink mirrors journal entries into external storage. entity is the
// owning account IBAN or user email.
type AuditSink interface {
	Record(entity string, entry journal.Entry) error
}

// ─── Bootstrap Records ──────────────────────────────────────────────────────

// UserRecord is one bootstrap user.
type UserRecord struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	BirthDate  string `json:"birthDate"`
	Occupation string `json:"occupation"`
}

// MerchantRecord is one bootstrap merchant.
type MerchantRecord struct {
	Name             string `json:"commerciant"`
	ID               int    `json:"id"`
	Account          string `json:"account"`
	Type             string `json:"type"` // category
	CashbackStrategy string `json:"cashbackStrategy"`
}

// RateRecord is one declared exchange-rate pair; the reciprocal is derived.
type RateRecord struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// Bootstrap is the full pre-command configuration.
type Bootstrap struct {
	Users         []UserRecord     `json:"users"`
	Merchants     []MerchantRecord `json:"commerciants"`
	ExchangeRates []RateRecord     `json:"exchangeRates"`
}

// ─── Engine ─────────────────────────────────────────────────────────────────

// Engine executes commands against the in-memory model.
type Engine struct {
	cfg      config.EngineConfig
	registry *ledger.Registry
	graph    *exchange.Graph
	cashback *cashback.Engine
	splits   *split.Coordinator
	sink     AuditSink

	handlers map[string]func(*Command) *Output
}

// New builds an engine from bootstrap data. Unknown strategy names are fatal
// here, before any command runs.
func New(cfg config.EngineConfig, boot Bootstrap, sink AuditSink) (*Engine, error) {
	rates := make([]exchange.Rate, len(boot.ExchangeRates))
	for i, r := range boot.ExchangeRates {
		rates[i] = exchange.Rate{From: r.From, To: r.To, Rate: r.Rate}
	}
	graph := exchange.NewGraph(rates)

	reg := ledger.NewRegistry(ledger.NewNumberSource(cfg.Seed))
	for _, u := range boot.Users {
		reg.RegisterUser(domain.NewUser(u.FirstName, u.LastName, u.Email, u.BirthDate, u.Occupation))
	}
	for _, m := range boot.Merchants {
		strategy, err := domain.ParseStrategy(m.CashbackStrategy)
		if err != nil {
			return nil, fmt.Errorf("merchant %s: %w", m.Name, err)
		}
		reg.RegisterMerchant(domain.NewMerchant(m.Name, m.ID, m.Account, m.Type, strategy))
	}

	e := &Engine{
		cfg:      cfg,
		registry: reg,
		graph:    graph,
		cashback: cashback.New(graph, cfg.ReferenceCurrency),
		splits:   split.NewCoordinator(reg, graph, cfg.ReferenceCurrency),
		sink:     sink,
	}
	e.handlers = map[string]func(*Command) *Output{
		"addAccount":              e.addAccount,
		"addFunds":                e.addFunds,
		"createCard":              e.createCard,
		"createOneTimeCard":       e.createOneTimeCard,
		"deleteCard":              e.deleteCard,
		"setMinimumBalance":       e.setMinimumBalance,
		"setAlias":                e.setAlias,
		"checkCardStatus":         e.checkCardStatus,
		"payOnline":               e.payOnline,
		"sendMoney":               e.sendMoney,
		"cashWithdrawal":          e.cashWithdrawal,
		"addInterest":             e.addInterest,
		"changeInterestRate":      e.changeInterestRate,
		"withdrawSavings":         e.withdrawSavings,
		"upgradePlan":             e.upgradePlan,
		"splitPayment":            e.splitPayment,
		"acceptSplitPayment":      e.acceptSplitPayment,
		"rejectSplitPayment":      e.rejectSplitPayment,
		"addNewBusinessAssociate": e.addNewBusinessAssociate,
		"changeSpendingLimit":     e.changeSpendingLimit,
		"changeDepositLimit":      e.changeDepositLimit,
		"printUsers":              e.printUsers,
		"printTransactions":       e.printTransactions,
		"deleteAccount":           e.deleteAccount,
		"report":                  e.report,
		"spendingsReport":         e.spendingsReport,
		"businessReport":          e.businessReport,
	}
	return e, nil
}

// Registry exposes the identity indices, for the read-only API surface.
func (e *Engine) Registry() *ledger.Registry { return e.registry }

// Splits exposes the split-payment coordinator, for the read-only API
// surface.
func (e *Engine) Splits() *split.Coordinator { return e.splits }

// Execute runs one command. It returns nil for side-effecting action
// commands that complete without a reportable error.
func (e *Engine) Execute(cmd *Command) *Output {
	handler, ok := e.handlers[cmd.Kind]
	if !ok {
		log.Printf("[engine] skipping unknown command %q at t=%d", cmd.Kind, cmd.Timestamp)
		return nil
	}
	metrics.CommandsProcessed.WithLabelValues(cmd.Kind).Inc()
	return handler(cmd)
}

// Run executes a full command sequence and collects the output records.
func (e *Engine) Run(cmds []Command) []Output {
	var outputs []Output
	for i := range cmds {
		if out := e.Execute(&cmds[i]); out != nil {
			outputs = append(outputs, *out)
		}
	}
	return outputs
}

// ─── Shared Helpers ─────────────────────────────────────────────────────────

// reportError converts a lookup failure into an output record.
func (e *Engine) reportError(cmd *Command, msg string) *Output {
	metrics.ReportedErrors.WithLabelValues(cmd.Kind).Inc()
	return &Output{
		Command:   cmd.Kind,
		Output:    errBody{Timestamp: cmd.Timestamp, Description: msg},
		Timestamp: cmd.Timestamp,
	}
}

// logBoth appends one entry to a user's and an account's journals, and
// mirrors it into the audit sink when one is configured.
func (e *Engine) logBoth(u *domain.User, acc *domain.Account, entry journal.Entry) {
	u.Journal.Append(entry)
	acc.Journal.Append(entry)
	e.audit(u.Email, entry)
	e.audit(acc.IBAN, entry)
}

func (e *Engine) logUser(u *domain.User, entry journal.Entry) {
	u.Journal.Append(entry)
	e.audit(u.Email, entry)
}

func (e *Engine) logAccount(acc *domain.Account, entry journal.Entry) {
	acc.Journal.Append(entry)
	e.audit(acc.IBAN, entry)
}

func (e *Engine) audit(entity string, entry journal.Entry) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Record(entity, entry); err != nil {
		log.Printf("[engine] audit sink: %v", err)
	}
}

// toReference converts an account-currency amount into the reference
// currency for fee and threshold math.
func (e *Engine) toReference(amount float64, currency string) (float64, error) {
	return e.graph.Convert(amount, currency, e.cfg.ReferenceCurrency)
}
