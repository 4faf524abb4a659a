package domain

import (
	"time"

	"github.com/mintebank/minte/internal/journal"
)

// User is an identity that owns accounts and carries a plan tier. Users are
// created at bootstrap and never deleted.
type User struct {
	FirstName  string
	LastName   string
	Email      string
	BirthDate  string // yyyy-mm-dd
	Occupation string
	Plan       Plan

	Accounts []*Account
	// AccountsByID resolves both IBANs and aliases owned by this user.
	AccountsByID map[string]*Account
	// AccountByCard resolves a card number to the owning account.
	AccountByCard map[string]*Account

	Journal *journal.Log
}

// NewUser creates a user from bootstrap data. Students start on the student
// plan; everyone else starts on standard.
func NewUser(firstName, lastName, email, birthDate, occupation string) *User {
	plan := PlanStandard
	if occupation == "student" {
		plan = PlanStudent
	}
	return &User{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		BirthDate:     birthDate,
		Occupation:    occupation,
		Plan:          plan,
		AccountsByID:  make(map[string]*Account),
		AccountByCard: make(map[string]*Account),
		Journal:       journal.NewLog(),
	}
}

// AttachAccount registers an account under this user's indices.
func (u *User) AttachAccount(acc *Account) {
	u.Accounts = append(u.Accounts, acc)
	u.AccountsByID[acc.IBAN] = acc
}

// DetachAccount removes an account and its alias from this user's indices.
func (u *User) DetachAccount(acc *Account) {
	for i, a := range u.Accounts {
		if a == acc {
			u.Accounts = append(u.Accounts[:i], u.Accounts[i+1:]...)
			break
		}
	}
	delete(u.AccountsByID, acc.IBAN)
	if acc.Alias != "" {
		delete(u.AccountsByID, acc.Alias)
	}
}

// Age returns the user's age in whole years at the given moment.
func (u *User) Age(now time.Time) int {
	born, err := time.Parse("2006-01-02", u.BirthDate)
	if err != nil {
		return 0
	}
	years := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		years--
	}
	return years
}

// ClassicAccountIn returns the user's first classic account held in the given
// currency, if any.
func (u *User) ClassicAccountIn(currency string) *Account {
	for _, acc := range u.Accounts {
		if acc.Type == AccountClassic && acc.Currency == currency {
			return acc
		}
	}
	return nil
}
