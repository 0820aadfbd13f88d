// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUsernameAlreadyExists indicates that the account with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrWrongCredentials indicates that the username or password is wrong.
	ErrWrongCredentials = errors.New("username or password not found")
)

// RoleUser is the single authority granted to every account.
const RoleUser = "USER"

// Account holds user credentials and the current balance.
type Account struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	HashedPassword string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Principal is the set of credentials the authentication layer verifies.
type Principal struct {
	Username       string
	HashedPassword string
	Roles          []string
}

// NewPrincipal returns the principal for the given account.
func NewPrincipal(a Account) Principal {
	return Principal{
		Username:       a.Username,
		HashedPassword: a.HashedPassword,
		Roles:          []string{RoleUser},
	}
}
