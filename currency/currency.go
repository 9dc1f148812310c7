package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juju/errors"
)

// Amount is integer counting lowest currency unit, e.g. $1.20 = 120, 1300 KRW = 1300
type Amount int64

// Nominal is value of one coin or bill
type Nominal Amount

var ErrNominalInvalid = errors.New("nominal is not valid for this group")

// ErrNominalShort means group did not hold enough nominals to expend amount.
type ErrNominalShort struct {
	Remainder Amount
}

func (e *ErrNominalShort) Error() string {
	return fmt.Sprintf("not enough nominals, remainder=%d", e.Remainder)
}

// NominalGroup operates money comprised of multiple nominals, like coins or bills.
// n100 : 3
// n500 : 1
// n1000: 4
// total: 4800
type NominalGroup struct {
	values map[Nominal]uint
}

func NewNominalGroup(valid ...Nominal) *NominalGroup {
	ng := &NominalGroup{}
	ng.SetValid(valid)
	return ng
}

func (self *NominalGroup) Copy() *NominalGroup {
	ng2 := &NominalGroup{
		values: make(map[Nominal]uint, len(self.values)),
	}
	for k, v := range self.values {
		ng2.values[k] = v
	}
	return ng2
}

func (self *NominalGroup) SetValid(valid []Nominal) {
	self.values = make(map[Nominal]uint, len(valid))
	for _, n := range valid {
		if n > 0 {
			self.values[n] = 0
		}
	}
}

func (self *NominalGroup) Valid(n Nominal) bool {
	_, ok := self.values[n]
	return ok
}

// Nominals returns valid nominals, largest first.
func (self *NominalGroup) Nominals() []Nominal {
	return self.order(ngOrderSortElemNominal)
}

func (self *NominalGroup) Add(n Nominal, count uint) error {
	if _, ok := self.values[n]; !ok {
		return errors.Annotatef(ErrNominalInvalid, "Add(n=%d, c=%d)", n, count)
	}
	self.values[n] += count
	return nil
}

func (self *NominalGroup) Set(n Nominal, count uint) error {
	if _, ok := self.values[n]; !ok {
		return errors.Annotatef(ErrNominalInvalid, "Set(n=%d, c=%d)", n, count)
	}
	self.values[n] = count
	return nil
}

// AddFrom adds all counts of source, extending valid nominals as needed.
func (self *NominalGroup) AddFrom(source *NominalGroup) {
	if self.values == nil {
		self.values = make(map[Nominal]uint, len(source.values))
	}
	for k, v := range source.values {
		self.values[k] += v
	}
}

func (self *NominalGroup) Get(n Nominal) (uint, error) {
	if stored, ok := self.values[n]; !ok {
		return 0, ErrNominalInvalid
	} else {
		return stored, nil
	}
}

// Iter visits nominals largest first.
func (self *NominalGroup) Iter(f func(nominal Nominal, count uint) error) error {
	for _, nominal := range self.Nominals() {
		if err := f(nominal, self.values[nominal]); err != nil {
			return err
		}
	}
	return nil
}

// Subset returns copy restricted to given nominals.
func (self *NominalGroup) Subset(keep func(Nominal) bool) *NominalGroup {
	ng2 := &NominalGroup{values: make(map[Nominal]uint, len(self.values))}
	for n, c := range self.values {
		if keep(n) {
			ng2.values[n] = c
		}
	}
	return ng2
}

func (self *NominalGroup) Total() Amount {
	sum := Amount(0)
	for nominal, count := range self.values {
		sum += Amount(nominal) * Amount(count)
	}
	return sum
}

// Sub decreases counts by other. Caller must ensure other fits.
func (self *NominalGroup) Sub(other *NominalGroup) {
	for nominal, c := range other.values {
		if self.values[nominal] < c {
			panic(fmt.Sprintf("code error NominalGroup.Sub n=%d have=%d sub=%d", nominal, self.values[nominal], c))
		}
		self.values[nominal] -= c
	}
}

// Map returns non-zero counts.
func (self *NominalGroup) Map() map[Nominal]uint {
	m := make(map[Nominal]uint, len(self.values))
	for n, c := range self.values {
		if c > 0 {
			m[n] = c
		}
	}
	return m
}

func (self *NominalGroup) Equal(other *NominalGroup) bool {
	a, b := self.Map(), other.Map()
	if len(a) != len(b) {
		return false
	}
	for n, c := range a {
		if b[n] != c {
			return false
		}
	}
	return true
}

// Withdraw moves `a` worth of nominals into `to` (may be nil).
// Group is not modified on error.
func (self *NominalGroup) Withdraw(to *NominalGroup, a Amount, strategy ExpendStrategy) error {
	// check if transfer is possible with given strategy
	if err := self.Copy().expendLoop(nil, a, strategy); err != nil {
		return err
	}
	return self.expendLoop(to, a, strategy)
}

func (self *NominalGroup) String() string {
	parts := make([]string, 0, len(self.values)+1)
	sum := Amount(0)
	for _, nominal := range self.Nominals() {
		count := self.values[nominal]
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d", nominal, count))
			sum += Amount(nominal) * Amount(count)
		}
	}
	parts = append(parts, fmt.Sprintf("total:%d", sum))
	return strings.Join(parts, ",")
}

func (self *NominalGroup) expendLoop(to *NominalGroup, amount Amount, strategy ExpendStrategy) error {
	if amount < 0 {
		return errors.NotValidf("expend amount=%d", amount)
	}
	strategy.Reset(self)
	for amount > 0 {
		nominal, err := strategy.ExpendOne(self, amount)
		if err != nil {
			return &ErrNominalShort{Remainder: amount}
		}
		if nominal == 0 {
			panic("ExpendStrategy returned Nominal 0 without error")
		}
		amount -= Amount(nominal)
		if to != nil {
			if to.values == nil {
				to.values = make(map[Nominal]uint)
			}
			to.values[nominal] += 1
		}
	}
	return nil
}

var errExpendOne = errors.New("no nominal fits")

// common code from strategies
func expendOneOrdered(from *NominalGroup, order []Nominal, max Amount) (Nominal, error) {
	if len(order) < len(from.values) {
		panic("expendOneOrdered order must include all nominals")
	}
	if max == 0 {
		return 0, nil
	}
	for _, n := range order {
		if Amount(n) <= max && from.values[n] > 0 {
			from.values[n] -= 1
			return n, nil
		}
	}
	return 0, errExpendOne
}

type ngOrderSortElemFunc func(Nominal, uint) Nominal

func (self *NominalGroup) order(sortElemFunc ngOrderSortElemFunc) []Nominal {
	order := make([]Nominal, 0, len(self.values))
	for n := range self.values {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool {
		ni, nj := order[i], order[j]
		ei, ej := sortElemFunc(ni, self.values[ni]), sortElemFunc(nj, self.values[nj])
		if ei == ej {
			return ni > nj
		}
		return ei > ej
	})
	return order
}
func ngOrderSortElemNominal(n Nominal, c uint) Nominal { return n }
func ngOrderSortElemCount(n Nominal, c uint) Nominal   { return Nominal(c) }

// NominalGroup.Withdraw = strategy.Reset + loop strategy.ExpendOne
type ExpendStrategy interface {
	Reset(from *NominalGroup)
	ExpendOne(from *NominalGroup, max Amount) (Nominal, error)
}

type ExpendGenericOrder struct {
	order        []Nominal
	SortElemFunc ngOrderSortElemFunc
}

func (self *ExpendGenericOrder) Reset(from *NominalGroup) {
	self.order = from.order(self.SortElemFunc)
}
func (self *ExpendGenericOrder) ExpendOne(from *NominalGroup, max Amount) (Nominal, error) {
	return expendOneOrdered(from, self.order, max)
}

// NewExpendLeastCount is greedy: largest nominal first, fewest pieces.
func NewExpendLeastCount() ExpendStrategy {
	return &ExpendGenericOrder{SortElemFunc: ngOrderSortElemNominal}
}

// NewExpendMostAvailable spends nominals with highest count first.
func NewExpendMostAvailable() ExpendStrategy {
	return &ExpendGenericOrder{SortElemFunc: ngOrderSortElemCount}
}

func NewExpendStrategy(name string) (ExpendStrategy, error) {
	switch name {
	case "", "least_count":
		return NewExpendLeastCount(), nil
	case "most_available":
		return NewExpendMostAvailable(), nil
	}
	return nil, errors.NotValidf("change strategy=%s", name)
}
