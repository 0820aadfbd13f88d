package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates that the account does not have sufficient balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrRecipientNotFound indicates that the transfer recipient account is not found.
	ErrRecipientNotFound = errors.New("recipient account not found")
	// ErrSelfTransfer indicates a transfer to the sender's own account.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
)

// Entry descriptions.
const (
	DescDeposit    = "Deposit"
	DescWithdrawal = "Withdrawal"
)

// DescTransferOut describes the sender side of a transfer.
func DescTransferOut(to string) string {
	return fmt.Sprintf("Transfer Out to %s", to)
}

// DescTransferIn describes the recipient side of a transfer.
func DescTransferIn(from string) string {
	return fmt.Sprintf("Transfer In from %s", from)
}

// Entry holds a single balance change of an account.
type Entry struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"` // always positive
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateEntryParams is the input data to create an entry.
type CreateEntryParams struct {
	AccountID   int64
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// EntryResult is the result of a deposit or withdrawal.
type EntryResult struct {
	Account Account `json:"account"`
	Entry   Entry   `json:"entry"`
}

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	FromAccount Account `json:"from_account"`
	ToAccount   Account `json:"to_account"`
	FromEntry   Entry   `json:"from_entry"`
	ToEntry     Entry   `json:"to_entry"`
}
