package emulator

import (
	"errors"

	"github.com/shopspring/decimal"
)

var errNotEnough = errors.New("not enough funds")

// account holds one balance. It is not synchronized on its own; the
// exchange guards all accounts with a single lock so that a fill updates
// both sides at once.
type account struct {
	balance decimal.Decimal
}

func (a *account) Balance() decimal.Decimal {
	return a.balance
}

func (a *account) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("deposit amount cannot be negative")
	}

	a.balance = a.balance.Add(amount)
	return nil
}

func (a *account) Withdraw(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("withdraw amount cannot be negative")
	}

	if amount.GreaterThan(a.balance) {
		return errNotEnough
	}

	a.balance = a.balance.Sub(amount)
	return nil
}

func (a *account) Covers(amount decimal.Decimal) bool {
	return !amount.GreaterThan(a.balance)
}
