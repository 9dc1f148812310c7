// Package money keeps machine cash reserve (till) per denomination,
// accepts tendered cash and makes change.
package money

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/helpers"
	"github.com/temoto/vendsim/log2"
	money_config "github.com/temoto/vendsim/money/config"
)

// Tender is inserted cash, denomination -> count.
type Tender map[currency.Nominal]uint

// Sum is total value of tender.
func Sum(t Tender) currency.Amount {
	a := currency.Amount(0)
	for n, c := range t {
		a += currency.Amount(n) * currency.Amount(c)
	}
	return a
}

func IsSufficient(tendered, price currency.Amount) bool { return tendered >= price }

type Denomination struct {
	Nominal currency.Nominal
	// Capacity is ceiling applied by Collect. Zero for collect-only denominations.
	Capacity uint
	// Accept: customer may insert.
	Accept bool
	// Change: machine dispenses as change.
	Change bool
}

type CollectReport struct {
	// Collected is taken out by operator.
	Collected map[currency.Nominal]uint
	// Refilled is put in by operator.
	Refilled map[currency.Nominal]uint
}

type Till struct {
	log          *log2.Log
	home         currency.Code
	denoms       map[currency.Nominal]Denomination
	strategy     currency.ExpendStrategy
	cashMinCount uint

	mu   sync.Mutex
	bank *currency.NominalGroup
}

func New(log *log2.Log, home currency.Code, denoms []Denomination, strategy currency.ExpendStrategy, cashMinCount uint) (*Till, error) {
	if !home.Valid() {
		return nil, &currency.ErrUnknownCurrency{Code: home}
	}
	if strategy == nil {
		strategy = currency.NewExpendLeastCount()
	}
	self := &Till{
		log:          log,
		home:         home,
		denoms:       make(map[currency.Nominal]Denomination, len(denoms)),
		strategy:     strategy,
		cashMinCount: cashMinCount,
	}
	nominals := make([]currency.Nominal, 0, len(denoms))
	for _, d := range denoms {
		if d.Nominal <= 0 {
			return nil, errors.NotValidf("denomination=%d", d.Nominal)
		}
		if _, ok := self.denoms[d.Nominal]; ok {
			return nil, errors.AlreadyExistsf("denomination=%d", d.Nominal)
		}
		self.denoms[d.Nominal] = d
		nominals = append(nominals, d.Nominal)
	}
	self.bank = currency.NewNominalGroup(nominals...)
	return self, nil
}

// NewFromConfig builds till with initial counts from config.
func NewFromConfig(log *log2.Log, c *money_config.Config) (*Till, error) {
	home, err := currency.ParseCode(c.Home)
	if err != nil {
		return nil, errors.Annotate(err, "money.home")
	}
	strategy, err := currency.NewExpendStrategy(c.ChangeStrategy)
	if err != nil {
		return nil, errors.Annotate(err, "money.change_strategy")
	}
	cashMin := uint(money_config.DefaultCashMinCount)
	switch {
	case c.CashMinCount < 0:
		cashMin = 0
	case c.CashMinCount > 0:
		cashMin = uint(c.CashMinCount)
	}

	errs := make([]error, 0)
	denoms := make([]Denomination, 0, len(c.Denominations))
	counts := make(map[currency.Nominal]uint, len(c.Denominations))
	for _, dc := range c.Denominations {
		n, err := strconv.ParseUint(strings.TrimSpace(dc.Nominal), 10, 63)
		if err != nil || n == 0 {
			errs = append(errs, errors.NotValidf("money.denomination=%s", dc.Nominal))
			continue
		}
		if dc.Count < 0 || dc.Capacity < 0 {
			errs = append(errs, errors.NotValidf("money.denomination=%s count=%d capacity=%d", dc.Nominal, dc.Count, dc.Capacity))
			continue
		}
		if dc.Change && dc.Capacity > 0 && dc.Count > dc.Capacity {
			errs = append(errs, errors.NotValidf("money.denomination=%s count=%d over capacity=%d", dc.Nominal, dc.Count, dc.Capacity))
			continue
		}
		nominal := currency.Nominal(n)
		denoms = append(denoms, Denomination{
			Nominal:  nominal,
			Capacity: uint(dc.Capacity),
			Accept:   dc.Accept,
			Change:   dc.Change,
		})
		counts[nominal] = uint(dc.Count)
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}

	self, err := New(log, home, denoms, strategy, cashMin)
	if err != nil {
		return nil, errors.Annotate(err, "money")
	}
	for n, count := range counts {
		_ = self.bank.Set(n, count)
	}
	log.Debugf("till init %s", self.bank.String())
	return self, nil
}

func (self *Till) Home() currency.Code { return self.home }

// Denominations returns settings, largest first.
func (self *Till) Denominations() []Denomination {
	ds := make([]Denomination, 0, len(self.denoms))
	for _, d := range self.denoms {
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].Nominal > ds[j].Nominal })
	return ds
}

func (self *Till) Counts() map[currency.Nominal]uint {
	self.mu.Lock()
	defer self.mu.Unlock()
	m := make(map[currency.Nominal]uint, len(self.denoms))
	for n := range self.denoms {
		m[n], _ = self.bank.Get(n)
	}
	return m
}

func (self *Till) Total() currency.Money {
	self.mu.Lock()
	defer self.mu.Unlock()
	return currency.New(self.bank.Total(), self.home)
}

func (self *Till) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return "till(" + self.bank.String() + ")"
}

// Validate rejects whole tender if any denomination is not accepted
// or till value with tender would not fit Amount.
func (self *Till) Validate(t Tender) error {
	ns := make([]currency.Nominal, 0, len(t))
	for n := range t {
		ns = append(ns, n)
	}
	// report the same denomination every time
	sort.Slice(ns, func(i, j int) bool { return ns[i] > ns[j] })
	for _, n := range ns {
		if d, ok := self.denoms[n]; !ok || !d.Accept {
			return &ErrUnsupportedDenomination{Nominal: n}
		}
	}

	self.mu.Lock()
	acc := self.bank.Total()
	self.mu.Unlock()
	for _, n := range ns {
		c := t[n]
		if c > uint((math.MaxInt64-acc)/currency.Amount(n)) {
			return &ErrTenderTooLarge{Nominal: n, Count: c}
		}
		acc += currency.Amount(n) * currency.Amount(c)
	}
	return nil
}

// CashAvailable is true when every change denomination holds at least cash_min_count pieces.
func (self *Till) CashAvailable() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	found := false
	for n, d := range self.denoms {
		if !d.Change {
			continue
		}
		found = true
		if c, _ := self.bank.Get(n); c < self.cashMinCount {
			return false
		}
	}
	return found || self.cashMinCount == 0
}

// PlanChange computes change for till as if tender was already credited.
// Nothing is mutated.
func (self *Till) PlanChange(t Tender, change currency.Amount) (*currency.NominalGroup, error) {
	if err := self.Validate(t); err != nil {
		return nil, err
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	projected := self.bank.Copy()
	for n, c := range t {
		_ = projected.Add(n, c)
	}
	return self.locked_plan(projected, change)
}

// MakeChange dispenses change from current till, all or nothing.
func (self *Till) MakeChange(change currency.Amount) (*currency.NominalGroup, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	plan, err := self.locked_plan(self.bank, change)
	if err != nil {
		return nil, err
	}
	self.bank.Sub(plan)
	self.log.Debugf("till change=%s %s", plan.String(), self.bank.String())
	return plan, nil
}

// Credit puts accepted tender into till.
func (self *Till) Credit(t Tender) error {
	if err := self.Validate(t); err != nil {
		return err
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	self.locked_credit(t)
	return nil
}

// Settle credits tender and dispenses change plan as one step.
// On error till is unchanged.
func (self *Till) Settle(t Tender, plan *currency.NominalGroup) error {
	if err := self.Validate(t); err != nil {
		return err
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	before := self.bank.Copy()
	self.locked_credit(t)
	if err := self.locked_dispense(plan); err != nil {
		self.bank = before
		return err
	}
	return nil
}

// Collect is operator service: take out all collect-only denominations,
// top up change denominations to capacity or take out excess.
func (self *Till) Collect() CollectReport {
	self.mu.Lock()
	defer self.mu.Unlock()
	report := CollectReport{
		Collected: make(map[currency.Nominal]uint),
		Refilled:  make(map[currency.Nominal]uint),
	}
	for n, d := range self.denoms {
		count, _ := self.bank.Get(n)
		switch {
		case !d.Change:
			if count > 0 {
				report.Collected[n] = count
			}
			_ = self.bank.Set(n, 0)
		case d.Capacity == 0:
		case count > d.Capacity:
			report.Collected[n] = count - d.Capacity
			_ = self.bank.Set(n, d.Capacity)
		case count < d.Capacity:
			report.Refilled[n] = d.Capacity - count
			_ = self.bank.Set(n, d.Capacity)
		}
	}
	self.log.Infof("till collect collected=%v refilled=%v %s", report.Collected, report.Refilled, self.bank.String())
	return report
}

func (self *Till) locked_plan(from *currency.NominalGroup, change currency.Amount) (*currency.NominalGroup, error) {
	dispensable := from.Subset(func(n currency.Nominal) bool { return self.denoms[n].Change })
	plan := currency.NewNominalGroup(dispensable.Nominals()...)
	if change == 0 {
		return plan, nil
	}
	err := dispensable.Withdraw(plan, change, self.strategy)
	if err != nil {
		if short, ok := err.(*currency.ErrNominalShort); ok {
			return nil, &ErrChangeUnavailable{
				Change:    currency.New(change, self.home),
				Remainder: currency.New(short.Remainder, self.home),
			}
		}
		return nil, err
	}
	return plan, nil
}

func (self *Till) locked_credit(t Tender) {
	for n, c := range t {
		_ = self.bank.Add(n, c)
	}
	self.log.Debugf("till credit=%d %s", Sum(t), self.bank.String())
}

func (self *Till) locked_dispense(plan *currency.NominalGroup) error {
	if plan == nil {
		return nil
	}
	for n, c := range plan.Map() {
		have, err := self.bank.Get(n)
		if err != nil {
			return &ErrUnsupportedDenomination{Nominal: n}
		}
		if have < c {
			short := currency.Amount(n) * currency.Amount(c-have)
			return &ErrChangeUnavailable{
				Change:    currency.New(plan.Total(), self.home),
				Remainder: currency.New(short, self.home),
			}
		}
	}
	self.bank.Sub(plan)
	self.log.Debugf("till dispense=%s %s", plan.String(), self.bank.String())
	return nil
}
