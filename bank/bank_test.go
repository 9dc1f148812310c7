package bank

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/log2"
)

func newTestBank(t testing.TB) *Bank {
	rates := currency.NewRateTable(currency.USD, currency.RoundHalfAwayFromZero)
	require.NoError(t, rates.Set(currency.KRW, decimal.NewFromInt(1300)))
	require.NoError(t, rates.Set(currency.CNY, decimal.RequireFromString("7.2")))
	return New(log2.NewTest(t, log2.LDebug), rates, rand.New(rand.NewSource(42)))
}

func TestAccount(t *testing.T) {
	t.Parallel()

	a := NewAccount("Kim", currency.KRW, "1234567895678")
	assert.Equal(t, currency.New(0, currency.KRW), a.Balance())
	assert.Equal(t, "1234-**-***5678", a.MaskedNumber())

	require.NoError(t, a.Deposit(currency.New(5000, currency.KRW)))
	assert.Equal(t, &currency.ErrCurrencyMismatch{A: currency.KRW, B: currency.USD},
		a.Deposit(currency.New(100, currency.USD)))
	assert.Error(t, a.Deposit(currency.New(-1, currency.KRW)))

	err := a.Withdraw(currency.New(7000, currency.KRW))
	assert.Equal(t, &ErrInsufficientBalance{
		Account:   "1234-**-***5678",
		Requested: currency.New(7000, currency.KRW),
		Available: currency.New(5000, currency.KRW),
	}, err)
	assert.IsType(t, &currency.ErrCurrencyMismatch{}, a.Withdraw(currency.New(1, currency.CNY)))
	assert.Error(t, a.Withdraw(currency.New(-1, currency.KRW)))
	assert.Equal(t, currency.New(5000, currency.KRW), a.Balance())

	require.NoError(t, a.Withdraw(currency.New(5000, currency.KRW)))
	assert.True(t, a.Balance().IsZero())
}

func TestCardPay(t *testing.T) {
	t.Parallel()

	a := NewAccount("Smith", currency.USD, "9876543210123")
	card := NewCard("1234000000005678", a)
	assert.Equal(t, "1234-****-****-5678", card.MaskedNumber())
	require.NoError(t, a.Deposit(currency.New(1000, currency.USD)))

	payee := NewAccount("shop", currency.USD, "1111111111111")
	require.NoError(t, card.Pay(currency.New(250, currency.USD), payee, "coffee"))
	assert.Equal(t, currency.New(750, currency.USD), a.Balance())
	assert.Equal(t, currency.New(250, currency.USD), payee.Balance())

	// payee currency mismatch changes nothing
	krwPayee := NewAccount("shop", currency.KRW, "2222222222222")
	err := card.Pay(currency.New(100, currency.USD), krwPayee, "tea")
	assert.IsType(t, &currency.ErrCurrencyMismatch{}, err)
	assert.Equal(t, currency.New(750, currency.USD), a.Balance())

	err = card.Pay(currency.New(800, currency.USD), nil, "too much")
	assert.IsType(t, &ErrInsufficientBalance{}, err)
	assert.Equal(t, currency.New(750, currency.USD), a.Balance())

	h := card.History()
	require.Len(t, h, 1)
	assert.Equal(t, "coffee", h[0].Description)
	assert.Equal(t, currency.New(250, currency.USD), h[0].Amount)
	assert.False(t, h[0].Time.IsZero())
}

func TestBankIssue(t *testing.T) {
	t.Parallel()

	b := newTestBank(t)
	c1, err := b.Issue("Kim", currency.KRW)
	require.NoError(t, err)
	c2, err := b.Issue("Wang", currency.CNY)
	require.NoError(t, err)
	assert.Len(t, c1.Number(), cardNumberLen)
	assert.NotEqual(t, c1.Number(), c2.Number())
	assert.Equal(t, currency.CNY, c2.Account().Currency())
	assert.Equal(t, []*Card{c1, c2}, b.Cards())

	_, err = b.Issue("Tanaka", currency.Code("JPY"))
	assert.Error(t, err)
}

func TestBankCardSelector(t *testing.T) {
	t.Parallel()

	b := newTestBank(t)
	c1, err := b.Issue("Kim", currency.KRW)
	require.NoError(t, err)
	c2, err := b.Issue("Smith", currency.USD)
	require.NoError(t, err)

	got, err := b.Card("1")
	require.NoError(t, err)
	assert.Equal(t, c2, got)
	got, err = b.Card(c1.Number())
	require.NoError(t, err)
	assert.Equal(t, c1, got)
	n := c1.Number()
	got, err = b.Card(n[:4] + "-" + n[4:8] + "-" + n[8:12] + "-" + n[12:])
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	_, err = b.Card("2")
	assert.Equal(t, &ErrUnknownCard{Selector: "2"}, err)
	_, err = b.Card(c1.MaskedNumber())
	assert.IsType(t, &ErrUnknownCard{}, err)
}

func TestDepositConverted(t *testing.T) {
	t.Parallel()

	b := newTestBank(t)
	card, err := b.Issue("Smith", currency.USD)
	require.NoError(t, err)
	m, err := b.DepositConverted(card.Account(), currency.New(130000, currency.KRW))
	require.NoError(t, err)
	assert.Equal(t, currency.New(10000, currency.USD), m)
	assert.Equal(t, m, card.Account().Balance())
}
