// Package bank simulates card issuer: accounts with balance and cards bound to them.
package bank

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/log2"
)

type Bank struct {
	log   *log2.Log
	rates *currency.RateTable
	rand  *rand.Rand

	mu      sync.RWMutex
	cards   []*Card
	byNum   map[string]*Card
	numbers map[string]struct{}
}

func New(log *log2.Log, rates *currency.RateTable, rnd *rand.Rand) *Bank {
	return &Bank{
		log:     log,
		rates:   rates,
		rand:    rnd,
		byNum:   make(map[string]*Card),
		numbers: make(map[string]struct{}),
	}
}

func (self *Bank) Rates() *currency.RateTable { return self.rates }

// OpenAccount creates account with zero balance, not bound to any card.
func (self *Bank) OpenAccount(owner string, code currency.Code) (*Account, error) {
	if !code.Valid() {
		return nil, &currency.ErrUnknownCurrency{Code: code}
	}
	if _, err := self.rates.Rate(code); err != nil {
		return nil, errors.Annotatef(err, "account owner=%s no exchange rate", owner)
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	return NewAccount(owner, code, self.locked_number(accountNumberLen)), nil
}

// Issue opens account and binds new card to it.
func (self *Bank) Issue(owner string, code currency.Code) (*Card, error) {
	account, err := self.OpenAccount(owner, code)
	if err != nil {
		return nil, err
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	card := NewCard(self.locked_number(cardNumberLen), account)
	self.cards = append(self.cards, card)
	self.byNum[card.number] = card
	self.log.Debugf("bank issued %s account=%s currency=%s", card.MaskedNumber(), account.MaskedNumber(), code)
	return card, nil
}

// DepositConverted credits account with amount in any known currency.
func (self *Bank) DepositConverted(account *Account, m currency.Money) (currency.Money, error) {
	converted, err := self.rates.Convert(m, account.Currency())
	if err != nil {
		return currency.Money{}, err
	}
	return converted, account.Deposit(converted)
}

// Card resolves zero-based display index or full card number.
func (self *Bank) Card(selector string) (*Card, error) {
	selector = strings.TrimSpace(selector)
	self.mu.RLock()
	defer self.mu.RUnlock()
	if i, err := strconv.Atoi(selector); err == nil && len(selector) < cardNumberLen {
		if i >= 0 && i < len(self.cards) {
			return self.cards[i], nil
		}
		return nil, &ErrUnknownCard{Selector: selector}
	}
	if c, ok := self.byNum[strings.ReplaceAll(selector, "-", "")]; ok {
		return c, nil
	}
	return nil, &ErrUnknownCard{Selector: selector}
}

func (self *Bank) Cards() []*Card {
	self.mu.RLock()
	defer self.mu.RUnlock()
	cs := make([]*Card, len(self.cards))
	copy(cs, self.cards)
	return cs
}

func (self *Bank) locked_number(length int) string {
	for {
		var b strings.Builder
		b.Grow(length)
		for i := 0; i < length; i++ {
			b.WriteByte(byte('0' + self.rand.Intn(10)))
		}
		s := b.String()
		if _, ok := self.numbers[s]; !ok {
			self.numbers[s] = struct{}{}
			return s
		}
	}
}
