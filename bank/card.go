package bank

import (
	"fmt"
	"sync"
	"time"

	"github.com/temoto/vendsim/currency"
)

const cardNumberLen = 16

type HistoryEntry struct {
	Time        time.Time
	Description string
	// Amount withdrawn in card account currency.
	Amount currency.Money
}

// Card is payment instrument bound to one account.
// Account is shared, not owned.
type Card struct {
	number  string
	account *Account

	mu      sync.Mutex
	history []HistoryEntry
}

func NewCard(number string, account *Account) *Card {
	return &Card{number: number, account: account}
}

func (self *Card) Number() string    { return self.number }
func (self *Card) Account() *Account { return self.account }

// MaskedNumber: 1234-****-****-5678
func (self *Card) MaskedNumber() string {
	n := self.number
	if len(n) < cardNumberLen {
		return n
	}
	return fmt.Sprintf("%s-****-****-%s", n[:4], n[len(n)-4:])
}

func (self *Card) String() string {
	return fmt.Sprintf("card(%s owner=%s)", self.MaskedNumber(), self.account.Owner)
}

// Pay withdraws amount from card account and credits payee, if given.
// Payee currency is checked before withdrawal, so failed Pay changes nothing.
func (self *Card) Pay(amount currency.Money, payee *Account, description string) error {
	if payee != nil && payee.Currency() != amount.Currency {
		return &currency.ErrCurrencyMismatch{A: amount.Currency, B: payee.Currency()}
	}
	if err := self.account.Withdraw(amount); err != nil {
		return err
	}
	if payee != nil {
		if err := payee.Deposit(amount); err != nil {
			panic(fmt.Sprintf("code error card=%s payee deposit after check err=%v", self.MaskedNumber(), err))
		}
	}
	self.mu.Lock()
	self.history = append(self.history, HistoryEntry{
		Time:        time.Now(),
		Description: description,
		Amount:      amount,
	})
	self.mu.Unlock()
	return nil
}

func (self *Card) History() []HistoryEntry {
	self.mu.Lock()
	defer self.mu.Unlock()
	h := make([]HistoryEntry, len(self.history))
	copy(h, self.history)
	return h
}
