package currency

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Code is ISO 4217 currency code.
type Code string

const (
	KRW Code = "KRW"
	USD Code = "USD"
	CNY Code = "CNY"
)

var unitsMu sync.RWMutex

// digits is count of minor unit decimal places.
var digits = map[Code]int32{
	KRW: 0,
	USD: 2,
	CNY: 2,
}

var symbols = map[Code]string{
	KRW: "₩",
	USD: "$",
	CNY: "¥",
}

// Digits returns number of minor unit digits, -1 for unknown code.
func (c Code) Digits() int32 {
	unitsMu.RLock()
	defer unitsMu.RUnlock()
	if d, ok := digits[c]; ok {
		return d
	}
	return -1
}

func (c Code) Symbol() string {
	unitsMu.RLock()
	defer unitsMu.RUnlock()
	if s, ok := symbols[c]; ok {
		return s
	}
	return string(c) + " "
}

func (c Code) Valid() bool { return c.Digits() >= 0 }

// ParseCode is case insensitive.
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", &ErrUnknownCurrency{Code: c}
	}
	return c, nil
}

// Register adds a currency unit. Existing units are not overwritten.
func Register(c Code, minorDigits int32, symbol string) {
	unitsMu.Lock()
	defer unitsMu.Unlock()
	if _, ok := digits[c]; ok {
		return
	}
	digits[c] = minorDigits
	if symbol != "" {
		symbols[c] = symbol
	}
}

type ErrUnknownCurrency struct {
	Code Code
}

func (e *ErrUnknownCurrency) Error() string {
	return fmt.Sprintf("unknown currency=%s", e.Code)
}

type ErrCurrencyMismatch struct {
	A, B Code
}

func (e *ErrCurrencyMismatch) Error() string {
	return fmt.Sprintf("currency mismatch %s and %s", e.A, e.B)
}

// Money is amount of minor units tagged with currency.
type Money struct {
	Amount   Amount
	Currency Code
}

func New(a Amount, c Code) Money { return Money{Amount: a, Currency: c} }

// FromMajor builds money from major units, e.g. FromMajor(12.5, USD) = 1250 cents.
// Fractions below minor unit are rounded half away from zero.
func FromMajor(major decimal.Decimal, c Code) Money {
	d := major.Shift(c.Digits()).Round(0)
	return Money{Amount: Amount(d.IntPart()), Currency: c}
}

func (m Money) IsZero() bool { return m.Amount == 0 }

func (m Money) same(other Money) error {
	if m.Currency != other.Currency {
		return &ErrCurrencyMismatch{A: m.Currency, B: other.Currency}
	}
	return nil
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.same(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.same(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Cmp returns -1, 0, +1 like decimal.Cmp.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.same(other); err != nil {
		return 0, err
	}
	switch {
	case m.Amount < other.Amount:
		return -1, nil
	case m.Amount > other.Amount:
		return 1, nil
	}
	return 0, nil
}

// Mul by integer quantity.
func (m Money) Mul(q int) Money {
	return Money{Amount: m.Amount * Amount(q), Currency: m.Currency}
}

// Major returns amount in major units.
func (m Money) Major() decimal.Decimal {
	return decimal.New(int64(m.Amount), 0).Shift(-m.Currency.Digits())
}

// String formats like "1,300 KRW" or "12.50 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.FormatNumber(), m.Currency)
}

// Symbol formats like "₩1,300" or "$12.50".
func (m Money) Symbol() string {
	return m.Currency.Symbol() + m.FormatNumber()
}

func (m Money) FormatNumber() string {
	d := m.Currency.Digits()
	if d <= 0 {
		return humanize.Comma(int64(m.Amount))
	}
	sign, abs := "", int64(m.Amount)
	if abs < 0 {
		sign, abs = "-", -abs
	}
	unit := decimal.New(1, d).IntPart()
	return fmt.Sprintf("%s%s.%0*d", sign, humanize.Comma(abs/unit), int(d), abs%unit)
}
