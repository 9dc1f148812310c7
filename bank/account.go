package bank

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/temoto/vendsim/currency"
)

const accountNumberLen = 13

// Account is a named ledger with balance in one currency.
// Balance is never negative.
type Account struct {
	ID     uuid.UUID
	Owner  string
	number string

	mu      sync.Mutex
	balance currency.Money
}

func NewAccount(owner string, code currency.Code, number string) *Account {
	return &Account{
		ID:      uuid.New(),
		Owner:   owner,
		number:  number,
		balance: currency.New(0, code),
	}
}

func (self *Account) Currency() currency.Code { return self.balance.Currency }

func (self *Account) Balance() currency.Money {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.balance
}

// MaskedNumber shows first and last 4 digits: 1234-**-***5678
func (self *Account) MaskedNumber() string {
	n := self.number
	if len(n) < accountNumberLen {
		return n
	}
	return fmt.Sprintf("%s-**-***%s", n[:len(n)-9], n[len(n)-4:])
}

func (self *Account) String() string {
	return fmt.Sprintf("account(owner=%s number=%s balance=%s)", self.Owner, self.MaskedNumber(), self.Balance().String())
}

func (self *Account) Deposit(m currency.Money) error {
	if m.Amount < 0 {
		return errors.NotValidf("deposit amount=%s", m.String())
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	next, err := self.balance.Add(m)
	if err != nil {
		return err
	}
	self.balance = next
	return nil
}

// Withdraw is all or nothing.
func (self *Account) Withdraw(m currency.Money) error {
	if m.Amount < 0 {
		return errors.NotValidf("withdraw amount=%s", m.String())
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	cmp, err := m.Cmp(self.balance)
	if err != nil {
		return err
	}
	if cmp > 0 {
		return &ErrInsufficientBalance{
			Account:   self.MaskedNumber(),
			Requested: m,
			Available: self.balance,
		}
	}
	self.balance, _ = self.balance.Sub(m)
	return nil
}
