// Package journal implements the append-only transaction ledger kept per
// account and per user. Entries are heterogeneous records: every entry has a
// timestamp and description, and each operation contributes its own optional
// fields. Entries are never mutated or removed; queries preserve input order.
package journal

// Entry is a single immutable ledger record. Optional fields marshal only
// when set. Amount is either a number or a preformatted "12.5 USD" string,
// depending on the operation that wrote it.
type Entry struct {
	Timestamp        int       `json:"timestamp"`
	Description      string    `json:"description"`
	Amount           any       `json:"amount,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	Card             string    `json:"card,omitempty"`
	CardHolder       string    `json:"cardHolder,omitempty"`
	Account          string    `json:"account,omitempty"`
	AccountIBAN      string    `json:"accountIBAN,omitempty"`
	SenderIBAN       string    `json:"senderIBAN,omitempty"`
	ReceiverIBAN     string    `json:"receiverIBAN,omitempty"`
	TransferType     string    `json:"transferType,omitempty"`
	Merchant         string    `json:"commerciant,omitempty"`
	NewPlanType      string    `json:"newPlanType,omitempty"`
	SplitType        string    `json:"splitPaymentType,omitempty"`
	AmountForUsers   []float64 `json:"amountForUsers,omitempty"`
	InvolvedAccounts []string  `json:"involvedAccounts,omitempty"`
	ClassicIBAN      string    `json:"classicAccountIBAN,omitempty"`
	SavingsIBAN      string    `json:"savingsAccountIBAN,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// Log is an append-only sequence of entries belonging to one account or user.
type Log struct {
	entries []Entry
}

// NewLog returns an empty ledger log.
func NewLog() *Log {
	return &Log{}
}

// Append adds an entry at the end of the log.
func (l *Log) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// All returns every entry, in append order.
func (l *Log) All() []Entry {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// FilterUpTo returns all entries with timestamp <= ts, input order preserved.
func (l *Log) FilterUpTo(ts int) []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Timestamp <= ts {
			out = append(out, e)
		}
	}
	return out
}

// FilterRange returns all entries with start <= timestamp <= end, input order
// preserved.
func (l *Log) FilterRange(start, end int) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Timestamp >= start && e.Timestamp <= end {
			out = append(out, e)
		}
	}
	return out
}
