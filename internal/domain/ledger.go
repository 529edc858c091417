// Package domain defines the core FitCoin entities: the user identity,
// the coin ledger, activity records and the marketplace catalog items.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds indicates that a debit exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNegativeAmount indicates that a ledger operation received a negative amount.
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

// Coin is the coin ledger: the current balance plus earned/spent running
// totals. Balance == TotalEarned - TotalSpent holds after every mutation.
type Coin struct {
	Balance     int64 `json:"balance"`
	TotalEarned int64 `json:"total_earned"`
	TotalSpent  int64 `json:"total_spent"`
}

// Credit returns a new ledger with amount added to the balance and the
// earned total. The receiver is never mutated.
func (c Coin) Credit(amount int64) (Coin, error) {
	if amount < 0 {
		return c, fmt.Errorf("credit %d: %w", amount, ErrNegativeAmount)
	}

	return Coin{
		Balance:     c.Balance + amount,
		TotalEarned: c.TotalEarned + amount,
		TotalSpent:  c.TotalSpent,
	}, nil
}

// Debit returns a new ledger with amount deducted from the balance and
// added to the spent total. Fails with ErrInsufficientFunds when amount
// exceeds the current balance.
func (c Coin) Debit(amount int64) (Coin, error) {
	if amount < 0 {
		return c, fmt.Errorf("debit %d: %w", amount, ErrNegativeAmount)
	}

	if amount > c.Balance {
		return c, fmt.Errorf("debit %d with balance %d: %w", amount, c.Balance, ErrInsufficientFunds)
	}

	return Coin{
		Balance:     c.Balance - amount,
		TotalEarned: c.TotalEarned,
		TotalSpent:  c.TotalSpent + amount,
	}, nil
}

// Consistent reports whether the ledger invariant holds.
func (c Coin) Consistent() bool {
	return c.Balance == c.TotalEarned-c.TotalSpent
}
