// Package split coordinates multi-party payment agreements. A request moves
// funds only after every participant accepts; a single rejection cancels it.
// There is no timeout and no partial settlement: the funds pre-check runs
// across all participants before any balance changes.
package split

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mintebank/minte/internal/exchange"
	"github.com/mintebank/minte/internal/ledger"
)

// Kind selects how the total is divided across participants.
type Kind string

const (
	KindEqual  Kind = "equal"
	KindCustom Kind = "custom"
)

// Response is a participant's recorded answer.
type Response int

const (
	ResponseUnset Response = iota
	ResponseAccepted
	ResponseRejected
)

// Request is a pending split-payment agreement.
type Request struct {
	ID        string
	Kind      Kind
	Accounts  []string  // participant IBANs, in caller order
	Amounts   []float64 // per-participant shares, in the request currency
	Total     float64
	Currency  string
	Timestamp int

	responses map[string]Response // participant owner email → answer
}

// Responses exposes the recorded answers, keyed by owner email.
func (r *Request) Responses() map[string]Response { return r.responses }

func (r *Request) allAccepted() bool {
	for _, resp := range r.responses {
		if resp != ResponseAccepted {
			return false
		}
	}
	return true
}

// Outcome reports how an accept/reject advanced a request.
type Outcome struct {
	Request  *Request
	Resolved bool   // request left the system
	Settled  bool   // debits were applied
	Error    string // pre-check failure or rejection text, when not settled
}

// Coordinator owns every pending request plus a FIFO queue per user per
// kind, so "oldest pending request of the matching kind" is an O(1) lookup.
type Coordinator struct {
	registry    *ledger.Registry
	graph       *exchange.Graph
	refCurrency string

	pending []*Request
	queues  map[string]map[Kind][]*Request // owner email → kind → FIFO
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(reg *ledger.Registry, graph *exchange.Graph, refCurrency string) *Coordinator {
	return &Coordinator{
		registry:    reg,
		graph:       graph,
		refCurrency: refCurrency,
		queues:      make(map[string]map[Kind][]*Request),
	}
}

// Create opens a request and enqueues it for every participant's owner. For
// the equal kind the total is divided evenly; for custom the caller-supplied
// share list is taken verbatim and assumed to match the participant count.
func (c *Coordinator) Create(kind Kind, ibans []string, total float64, shares []float64, currency string, timestamp int) (*Request, error) {
	req := &Request{
		ID:        uuid.NewString(),
		Kind:      kind,
		Accounts:  ibans,
		Total:     total,
		Currency:  currency,
		Timestamp: timestamp,
		responses: make(map[string]Response),
	}

	if kind == KindCustom {
		req.Amounts = shares
	} else {
		each := total / float64(len(ibans))
		req.Amounts = make([]float64, len(ibans))
		for i := range req.Amounts {
			req.Amounts[i] = each
		}
	}

	for _, iban := range ibans {
		owner, err := c.registry.OwnerOf(iban)
		if err != nil {
			return nil, fmt.Errorf("split participant %s: %w", iban, err)
		}
		req.responses[owner.Email] = ResponseUnset
		c.enqueue(owner.Email, req)
	}
	c.pending = append(c.pending, req)
	return req, nil
}

// Accept records an acceptance on the caller's oldest pending request of the
// given kind. When the last participant accepts, the pre-check and
// settlement run; the returned outcome says whether funds moved. A nil
// outcome means the user had no pending request of that kind.
func (c *Coordinator) Accept(email string, kind Kind) *Outcome {
	req := c.oldestOfKind(email, kind)
	if req == nil {
		return nil
	}
	req.responses[email] = ResponseAccepted

	if !req.allAccepted() {
		return &Outcome{Request: req}
	}

	outcome := &Outcome{Request: req, Resolved: true}
	if failed := c.precheck(req); failed != "" {
		outcome.Error = failed
	} else {
		c.settle(req)
		outcome.Settled = true
	}
	c.remove(req)
	return outcome
}

// Reject cancels the caller's oldest pending request of the given kind. No
// balances change; every participant keeps an audit record of the refusal.
func (c *Coordinator) Reject(email string, kind Kind) *Outcome {
	req := c.oldestOfKind(email, kind)
	if req == nil {
		return nil
	}
	req.responses[email] = ResponseRejected
	c.remove(req)
	return &Outcome{Request: req, Resolved: true, Error: "One user rejected the payment."}
}

// precheck verifies every participant can cover its converted share plus the
// tier fee. It returns the failure text naming the first account that cannot
// pay, or "" when all pass.
func (c *Coordinator) precheck(req *Request) string {
	for i, iban := range req.Accounts {
		acc, err := c.registry.Account(iban)
		if err != nil {
			return fmt.Sprintf("Account %s has insufficient funds for a split payment.", iban)
		}
		owner, err := c.registry.OwnerOf(iban)
		if err != nil {
			return fmt.Sprintf("Account %s has insufficient funds for a split payment.", iban)
		}

		share, err := c.graph.Convert(req.Amounts[i], req.Currency, acc.Currency)
		if err != nil {
			return fmt.Sprintf("Account %s has insufficient funds for a split payment.", iban)
		}
		shareRef, err := c.graph.Convert(share, acc.Currency, c.refCurrency)
		if err != nil {
			return fmt.Sprintf("Account %s has insufficient funds for a split payment.", iban)
		}
		fee := owner.Plan.FeeRate(shareRef) * share

		if acc.Balance < share+fee {
			return fmt.Sprintf("Account %s has insufficient funds for a split payment.", iban)
		}
	}
	return ""
}

// settle debits every participant's converted share in sequence. The tier
// fee checked during precheck is intentionally NOT subtracted here; the
// asymmetry is part of the settlement contract.
func (c *Coordinator) settle(req *Request) {
	for i, iban := range req.Accounts {
		acc, err := c.registry.Account(iban)
		if err != nil {
			continue
		}
		share, err := c.graph.Convert(req.Amounts[i], req.Currency, acc.Currency)
		if err != nil {
			continue
		}
		acc.Balance -= share
	}
}

// ─── Queue Bookkeeping ──────────────────────────────────────────────────────

func (c *Coordinator) enqueue(email string, req *Request) {
	if c.queues[email] == nil {
		c.queues[email] = make(map[Kind][]*Request)
	}
	c.queues[email][req.Kind] = append(c.queues[email][req.Kind], req)
}

func (c *Coordinator) oldestOfKind(email string, kind Kind) *Request {
	q := c.queues[email][kind]
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// remove drops a resolved request from the global pending set and from every
// participant's queue.
func (c *Coordinator) remove(req *Request) {
	for i, p := range c.pending {
		if p == req {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	for email := range req.responses {
		q := c.queues[email][req.Kind]
		for i, p := range q {
			if p == req {
				c.queues[email][req.Kind] = append(q[:i], q[i+1:]...)
				break
			}
		}
	}
}

// PendingCount returns the number of unresolved requests in the system.
func (c *Coordinator) PendingCount() int { return len(c.pending) }

// Pending returns the unresolved requests in creation order.
func (c *Coordinator) Pending() []*Request {
	return append([]*Request(nil), c.pending...)
}
