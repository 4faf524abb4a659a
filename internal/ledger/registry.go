// Package ledger holds the balance store and the identity indices of the
// engine. The Registry is an explicit context object passed into every
// operation — there are no ambient globals. An account's IBAN and alias
// always resolve to the same object in every index.
package ledger

import (
	"fmt"

	"github.com/mintebank/minte/internal/domain"
)

// Registry is the single source of truth for users, accounts, cards and
// merchants.
type Registry struct {
	users     []*domain.User
	merchants []*domain.Merchant

	byEmail            map[string]*domain.User
	accounts           map[string]*domain.Account // keyed by IBAN and alias
	ownerByAccount     map[string]*domain.User    // keyed by IBAN
	cards              map[string]*domain.Card
	accountByCard      map[string]*domain.Account
	userByCard         map[string]*domain.User
	merchantsByName    map[string]*domain.Merchant
	merchantsByAccount map[string]*domain.Merchant

	numbers *NumberSource
}

// NewRegistry creates an empty registry with the given identifier source.
func NewRegistry(numbers *NumberSource) *Registry {
	return &Registry{
		byEmail:            make(map[string]*domain.User),
		accounts:           make(map[string]*domain.Account),
		ownerByAccount:     make(map[string]*domain.User),
		cards:              make(map[string]*domain.Card),
		accountByCard:      make(map[string]*domain.Account),
		userByCard:         make(map[string]*domain.User),
		merchantsByName:    make(map[string]*domain.Merchant),
		merchantsByAccount: make(map[string]*domain.Merchant),
		numbers:            numbers,
	}
}

// ─── Bootstrap Registration ─────────────────────────────────────────────────

// RegisterUser indexes a bootstrap user by email.
func (r *Registry) RegisterUser(u *domain.User) {
	r.users = append(r.users, u)
	r.byEmail[u.Email] = u
}

// RegisterMerchant indexes a bootstrap merchant by name and receiving IBAN.
func (r *Registry) RegisterMerchant(m *domain.Merchant) {
	r.merchants = append(r.merchants, m)
	r.merchantsByName[m.Name] = m
	r.merchantsByAccount[m.Account] = m
}

// ─── Lookups ────────────────────────────────────────────────────────────────

// Users returns all users in bootstrap order.
func (r *Registry) Users() []*domain.User { return r.users }

// Merchants returns all merchants in bootstrap order.
func (r *Registry) Merchants() []*domain.Merchant { return r.merchants }

// UserByEmail resolves a user identity.
func (r *Registry) UserByEmail(email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// Account resolves an account by IBAN or alias.
func (r *Registry) Account(id string) (*domain.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// OwnerOf resolves the owning user of an account by IBAN or alias.
func (r *Registry) OwnerOf(id string) (*domain.User, error) {
	if acc, ok := r.accounts[id]; ok {
		if u, ok := r.ownerByAccount[acc.IBAN]; ok {
			return u, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// Card resolves a card by number.
func (r *Registry) Card(number string) (*domain.Card, error) {
	c, ok := r.cards[number]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return c, nil
}

// AccountOfCard resolves the account a card is attached to.
func (r *Registry) AccountOfCard(number string) (*domain.Account, error) {
	a, ok := r.accountByCard[number]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return a, nil
}

// UserOfCard resolves the user a card belongs to.
func (r *Registry) UserOfCard(number string) (*domain.User, error) {
	u, ok := r.userByCard[number]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return u, nil
}

// MerchantByName resolves a merchant identity.
func (r *Registry) MerchantByName(name string) (*domain.Merchant, bool) {
	m, ok := r.merchantsByName[name]
	return m, ok
}

// MerchantByAccount resolves a merchant by its receiving IBAN.
func (r *Registry) MerchantByAccount(iban string) (*domain.Merchant, bool) {
	m, ok := r.merchantsByAccount[iban]
	return m, ok
}

// ─── Account Lifecycle ──────────────────────────────────────────────────────

// CreateAccount opens an account of the given variant for owner and indexes
// it. Business accounts grant the creator the owner role; limits are set by
// the caller, which knows the reference-currency conversion.
func (r *Registry) CreateAccount(owner *domain.User, currency string, typ domain.AccountType) *domain.Account {
	acc := domain.NewAccount(r.numbers.IBAN(), currency, typ)
	acc.GrantRole(owner.Email, domain.RoleOwner)
	owner.AttachAccount(acc)
	r.accounts[acc.IBAN] = acc
	r.ownerByAccount[acc.IBAN] = owner
	return acc
}

// DeleteAccount removes an account and its alias from every index. The
// caller is responsible for the zero-balance check.
func (r *Registry) DeleteAccount(owner *domain.User, acc *domain.Account) {
	owner.DetachAccount(acc)
	delete(r.accounts, acc.IBAN)
	delete(r.ownerByAccount, acc.IBAN)
	if acc.Alias != "" {
		delete(r.accounts, acc.Alias)
	}
}

// SetAlias registers a secondary lookup key for the account, in both the
// global and the owner's index.
func (r *Registry) SetAlias(owner *domain.User, acc *domain.Account, alias string) {
	acc.Alias = alias
	r.accounts[alias] = acc
	owner.AccountsByID[alias] = acc
}

// ─── Card Lifecycle ─────────────────────────────────────────────────────────

// AttachCard issues a card on the account and indexes it.
func (r *Registry) AttachCard(owner *domain.User, acc *domain.Account, oneTime bool) *domain.Card {
	card := &domain.Card{Number: r.numbers.CardNumber(), Status: domain.CardActive, OneTime: oneTime}
	acc.Cards = append(acc.Cards, card)
	r.indexCard(card, owner, acc)
	return card
}

// ReplaceCardNumber retires a card's number and reissues it under a fresh
// one, atomically updating every index. Used for one-time cards after their
// first successful payment.
func (r *Registry) ReplaceCardNumber(owner *domain.User, acc *domain.Account, card *domain.Card) (old, new string) {
	old = card.Number
	r.unindexCard(old, owner)
	card.Number = r.numbers.CardNumber()
	r.indexCard(card, owner, acc)
	return old, card.Number
}

// DetachCard removes a card from its account and every index.
func (r *Registry) DetachCard(owner *domain.User, acc *domain.Account, card *domain.Card) {
	acc.RemoveCard(card.Number)
	r.unindexCard(card.Number, owner)
}

func (r *Registry) indexCard(card *domain.Card, owner *domain.User, acc *domain.Account) {
	r.cards[card.Number] = card
	r.accountByCard[card.Number] = acc
	r.userByCard[card.Number] = owner
	owner.AccountByCard[card.Number] = acc
}

func (r *Registry) unindexCard(number string, owner *domain.User) {
	delete(r.cards, number)
	delete(r.accountByCard, number)
	delete(r.userByCard, number)
	delete(owner.AccountByCard, number)
}

// ─── Balance Operations ─────────────────────────────────────────────────────

// Credit adds funds to an account.
func (r *Registry) Credit(acc *domain.Account, amount float64) {
	acc.Balance += amount
}

// Debit removes funds from an account, refusing to overdraw below zero.
// Whether a debit may cross the configured minimum balance is decided by the
// calling policy, not here.
func (r *Registry) Debit(acc *domain.Account, amount float64) error {
	if acc.Balance < amount {
		return fmt.Errorf("debit %s: insufficient funds", acc.IBAN)
	}
	acc.Balance -= amount
	return nil
}

// FreezeCardsIfAtMinimum freezes every card on the account once the balance
// has fallen to or below the configured minimum. It returns true when the
// one-time minimum-reached journal entry must be written: only the first
// time the balance lands exactly on the minimum.
func (r *Registry) FreezeCardsIfAtMinimum(acc *domain.Account) bool {
	if acc.Balance > acc.MinBalance {
		return false
	}
	for _, card := range acc.Cards {
		card.Status = domain.CardFrozen
	}
	if acc.Balance == acc.MinBalance {
		return acc.MarkMinimumReached()
	}
	return false
}
