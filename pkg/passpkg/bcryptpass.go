// Package passpkg provides password hashing strategies.
package passpkg

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes and checks passwords with bcrypt using the given cost.
//
// A zero or out of range cost falls back to bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns bcrypt hashing strategy with the given cost.
func NewBcrypt(cost int) Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return Bcrypt{Cost: cost}
}

// Hash returns the salted bcrypt hash of the password.
func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashedPassword), nil
}

// Check checks if the provided password matches the hashed one.
func (b Bcrypt) Check(password, hashedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
