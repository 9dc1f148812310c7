package currency

import (
	"fmt"
	"sort"
	"sync"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// Rounding applied when conversion result falls between minor units.
type Rounding uint8

const (
	// RoundHalfAwayFromZero: 0.5 -> 1, -0.5 -> -1
	RoundHalfAwayFromZero Rounding = iota
	// RoundHalfEven aka banker's rounding: 0.5 -> 0, 1.5 -> 2
	RoundHalfEven
)

func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "", "half_away":
		return RoundHalfAwayFromZero, nil
	case "bank", "half_even":
		return RoundHalfEven, nil
	}
	return 0, errors.NotValidf("rounding=%s", s)
}

func (r Rounding) String() string {
	switch r {
	case RoundHalfAwayFromZero:
		return "half_away"
	case RoundHalfEven:
		return "half_even"
	}
	return fmt.Sprintf("Rounding(%d)", uint8(r))
}

func (r Rounding) round(d decimal.Decimal, places int32) decimal.Decimal {
	if r == RoundHalfEven {
		return d.RoundBank(places)
	}
	return d.Round(places)
}

// RateTable is fixed in-memory exchange table.
// Each unit is stored as amount of that unit per one base unit,
// e.g. base=USD: KRW=1368, CNY=7.22.
type RateTable struct {
	mu       sync.RWMutex
	base     Code
	perBase  map[Code]decimal.Decimal
	rounding Rounding
}

func NewRateTable(base Code, rounding Rounding) *RateTable {
	return &RateTable{
		base:     base,
		perBase:  map[Code]decimal.Decimal{base: decimal.NewFromInt(1)},
		rounding: rounding,
	}
}

// DefaultRates are units per 1 USD.
var DefaultRates = map[Code]decimal.Decimal{
	KRW: decimal.NewFromInt(1368),
	CNY: decimal.RequireFromString("7.22"),
}

// DefaultRateTable is USD based with DefaultRates.
func DefaultRateTable(rounding Rounding) *RateTable {
	rt := NewRateTable(USD, rounding)
	for c, r := range DefaultRates {
		_ = rt.Set(c, r)
	}
	return rt
}

func (self *RateTable) Base() Code         { return self.base }
func (self *RateTable) Rounding() Rounding { return self.rounding }

func (self *RateTable) Set(c Code, perBase decimal.Decimal) error {
	if !c.Valid() {
		return &ErrUnknownCurrency{Code: c}
	}
	if !perBase.IsPositive() {
		return errors.NotValidf("rate %s=%s", c, perBase)
	}
	if c == self.base && !perBase.Equal(decimal.NewFromInt(1)) {
		return errors.NotValidf("base rate %s=%s", c, perBase)
	}
	self.mu.Lock()
	self.perBase[c] = perBase
	self.mu.Unlock()
	return nil
}

func (self *RateTable) Rate(c Code) (decimal.Decimal, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	r, ok := self.perBase[c]
	if !ok {
		return decimal.Zero, &ErrUnknownCurrency{Code: c}
	}
	return r, nil
}

// Convert m to currency `to`, rounding to minor unit of `to`.
// Lossy: Convert(Convert(x, B), A) may differ from x.
func (self *RateTable) Convert(m Money, to Code) (Money, error) {
	if m.Currency == to {
		return m, nil
	}
	rateFrom, err := self.Rate(m.Currency)
	if err != nil {
		return Money{}, err
	}
	rateTo, err := self.Rate(to)
	if err != nil {
		return Money{}, err
	}
	// multiply before divide keeps exact results exact
	major := m.Major().Mul(rateTo).DivRound(rateFrom, to.Digits()+8)
	minor := self.rounding.round(major.Shift(to.Digits()), 0)
	return Money{Amount: Amount(minor.IntPart()), Currency: to}, nil
}

// Codes are sorted.
func (self *RateTable) Codes() []Code {
	self.mu.RLock()
	defer self.mu.RUnlock()
	cs := make([]Code, 0, len(self.perBase))
	for c := range self.perBase {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
	return cs
}
