// Package api provides the read-only HTTP surface for `minte serve`: the
// state of a completed run (users, accounts, journals) plus Prometheus
// metrics. Nothing here mutates the ledger.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mintebank/minte/internal/domain"
	"github.com/mintebank/minte/internal/ledger"
	"github.com/mintebank/minte/internal/split"
)

// Server exposes a registry snapshot over HTTP.
type Server struct {
	registry       *ledger.Registry
	splits         *split.Coordinator
	metricsEnabled bool
}

// NewServer creates a server over the given registry.
func NewServer(reg *ledger.Registry) *Server {
	return &Server{registry: reg}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// WithSplits exposes the coordinator's unresolved split-payment requests on
// /api/splits.
func (s *Server) WithSplits(c *split.Coordinator) { s.splits = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", s.handleListUsers)
		r.Get("/users/{email}/transactions", s.handleUserTransactions)
		r.Get("/accounts/{iban}", s.handleAccount)
		r.Get("/accounts/{iban}/transactions", s.handleAccountTransactions)
		r.Get("/merchants", s.handleListMerchants)
		r.Get("/splits", s.handleListSplits)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Handlers ───────────────────────────────────────────────────────────────

type cardJSON struct {
	CardNumber string `json:"cardNumber"`
	Status     string `json:"status"`
}

type accountJSON struct {
	IBAN     string     `json:"IBAN"`
	Balance  float64    `json:"balance"`
	Currency string     `json:"currency"`
	Type     string     `json:"type"`
	Plan     string     `json:"plan,omitempty"`
	Cards    []cardJSON `json:"cards"`
}

type userJSON struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Plan      string        `json:"plan"`
	Accounts  []accountJSON `json:"accounts"`
}

func accountToJSON(acc *domain.Account, plan string) accountJSON {
	out := accountJSON{
		IBAN:     acc.IBAN,
		Balance:  acc.Balance,
		Currency: acc.Currency,
		Type:     string(acc.Type),
		Plan:     plan,
		Cards:    []cardJSON{},
	}
	for _, c := range acc.Cards {
		out.Cards = append(out.Cards, cardJSON{CardNumber: c.Number, Status: string(c.Status)})
	}
	return out
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := []userJSON{}
	for _, u := range s.registry.Users() {
		uj := userJSON{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Plan:      u.Plan.String(),
			Accounts:  []accountJSON{},
		}
		for _, acc := range u.Accounts {
			uj.Accounts = append(uj.Accounts, accountToJSON(acc, u.Plan.String()))
		}
		users = append(users, uj)
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserTransactions(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	user, err := s.registry.UserByEmail(email)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, user.Journal.All())
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	acc, err := s.registry.Account(chi.URLParam(r, "iban"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	plan := ""
	if owner, err := s.registry.OwnerOf(acc.IBAN); err == nil {
		plan = owner.Plan.String()
	}
	writeJSON(w, http.StatusOK, accountToJSON(acc, plan))
}

func (s *Server) handleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	acc, err := s.registry.Account(chi.URLParam(r, "iban"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acc.Journal.All())
}

type merchantJSON struct {
	Name     string `json:"commerciant"`
	Account  string `json:"account"`
	Category string `json:"type"`
	Strategy string `json:"cashbackStrategy"`
}

func (s *Server) handleListMerchants(w http.ResponseWriter, r *http.Request) {
	merchants := []merchantJSON{}
	for _, m := range s.registry.Merchants() {
		merchants = append(merchants, merchantJSON{
			Name:     m.Name,
			Account:  m.Account,
			Category: m.Category,
			Strategy: string(m.Strategy),
		})
	}
	writeJSON(w, http.StatusOK, merchants)
}

type splitJSON struct {
	ID        string    `json:"id"`
	Kind      string    `json:"splitPaymentType"`
	Accounts  []string  `json:"accounts"`
	Amounts   []float64 `json:"amounts"`
	Total     float64   `json:"total"`
	Currency  string    `json:"currency"`
	Timestamp int       `json:"timestamp"`
}

func (s *Server) handleListSplits(w http.ResponseWriter, r *http.Request) {
	splits := []splitJSON{}
	if s.splits != nil {
		for _, req := range s.splits.Pending() {
			splits = append(splits, splitJSON{
				ID:        req.ID,
				Kind:      string(req.Kind),
				Accounts:  req.Accounts,
				Amounts:   req.Amounts,
				Total:     req.Total,
				Currency:  req.Currency,
				Timestamp: req.Timestamp,
			})
		}
	}
	writeJSON(w, http.StatusOK, splits)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
