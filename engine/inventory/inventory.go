package inventory

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
	"github.com/temoto/vendsim/currency"
	engine_config "github.com/temoto/vendsim/engine/config"
	"github.com/temoto/vendsim/helpers"
	"github.com/temoto/vendsim/log2"
)

const (
	DefaultMaxItems = 20
	DefaultMaxStock = 20
)

type Inventory struct {
	log      *log2.Log
	home     currency.Code
	maxItems int
	maxStock int

	mu sync.RWMutex
	ss []*stock // display order
}

func New(log *log2.Log, home currency.Code, maxItems, maxStock int) *Inventory {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxStock <= 0 {
		maxStock = DefaultMaxStock
	}
	return &Inventory{
		log:      log,
		home:     home,
		maxItems: maxItems,
		maxStock: maxStock,
	}
}

// Init loads catalog from config. rnd is used only with random_stock.
func (self *Inventory) Init(c *engine_config.Inventory, rnd *rand.Rand) error {
	errs := make([]error, 0)
	for _, ic := range c.Items {
		count := ic.Stock
		if c.RandomStock {
			count = rnd.Intn(self.maxStock + 1)
		}
		price := currency.FromMajor(decimal.NewFromFloat(ic.Price), self.home)
		if err := self.AddItem(ic.Name, count, price); err != nil {
			errs = append(errs, errors.Annotatef(err, "config inventory item=%s", ic.Name))
		}
	}
	return helpers.FoldErrors(errs)
}

func (self *Inventory) Home() currency.Code { return self.home }
func (self *Inventory) MaxStock() int       { return self.maxStock }
func (self *Inventory) MaxItems() int       { return self.maxItems }

func (self *Inventory) Len() int {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return len(self.ss)
}

// List returns copies in display order.
func (self *Inventory) List() []Item {
	self.mu.RLock()
	defer self.mu.RUnlock()
	items := make([]Item, len(self.ss))
	for i, s := range self.ss {
		items[i] = s.item()
	}
	return items
}

// AllOutOfStock is true when every item stock is 0, including empty catalog.
func (self *Inventory) AllOutOfStock() bool {
	self.mu.RLock()
	defer self.mu.RUnlock()
	for _, s := range self.ss {
		if s.value > 0 {
			return false
		}
	}
	return true
}

func (self *Inventory) IsOutOfStock(name string) (bool, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	s, _, err := self.locked_find(name)
	if err != nil {
		return false, err
	}
	return s.value == 0, nil
}

// Lookup resolves zero-based display index or exact name.
func (self *Inventory) Lookup(selector string) (Item, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	s, _, err := self.locked_find(selector)
	if err != nil {
		return Item{}, err
	}
	return s.item(), nil
}

// Get finds item by exact name.
func (self *Inventory) Get(name string) (Item, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	s, err := self.locked_get(name)
	if err != nil {
		return Item{}, err
	}
	return s.item(), nil
}

// Reserve is pure check, nothing is decremented.
func (self *Inventory) Reserve(name string, quantity int) error {
	self.mu.RLock()
	defer self.mu.RUnlock()
	s, err := self.locked_get(name)
	if err != nil {
		return err
	}
	return s.has(quantity)
}

// Check validates all lines, without mutation.
func (self *Inventory) Check(lines []Line) error {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.locked_check(lines)
}

// Commit decrements every line or nothing.
func (self *Inventory) Commit(lines []Line) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if err := self.locked_check(lines); err != nil {
		return err
	}
	for _, line := range lines {
		s, _ := self.locked_get(line.Item)
		s.spend(line.Quantity)
		self.log.Debugf("inventory spend item=%s quantity=%d stock=%d", s.name, line.Quantity, s.value)
	}
	return nil
}

func (self *Inventory) AddItem(name string, count int, price currency.Money) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.NotValidf("item name=(empty)")
	}
	if count < 0 || count > self.maxStock {
		return &ErrInvalidQuantity{Quantity: count}
	}
	if err := self.checkPrice(price); err != nil {
		return err
	}

	self.mu.Lock()
	defer self.mu.Unlock()
	if _, err := self.locked_get(name); err == nil {
		return &ErrDuplicateItem{Item: name}
	}
	if len(self.ss) >= self.maxItems {
		return &ErrTooManyItems{Max: self.maxItems}
	}
	self.ss = append(self.ss, &stock{name: name, value: count, price: price})
	self.log.Debugf("inventory add item=%s stock=%d price=%s", name, count, price.String())
	return nil
}

func (self *Inventory) RemoveItem(selector string) (Item, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	s, i, err := self.locked_find(selector)
	if err != nil {
		return Item{}, err
	}
	self.ss = append(self.ss[:i], self.ss[i+1:]...)
	self.log.Debugf("inventory remove item=%s", s.name)
	return s.item(), nil
}

func (self *Inventory) Restock(selector string, delta int) (Item, error) {
	if delta <= 0 {
		return Item{}, &ErrInvalidQuantity{Quantity: delta}
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	s, _, err := self.locked_find(selector)
	if err != nil {
		return Item{}, err
	}
	if s.value+delta > self.maxStock {
		return Item{}, &ErrRestockExceedsCapacity{Item: s.name, Stock: s.value, Delta: delta, Max: self.maxStock}
	}
	s.value += delta
	self.log.Debugf("inventory restock item=%s delta=%d stock=%d", s.name, delta, s.value)
	return s.item(), nil
}

func (self *Inventory) SetPrice(selector string, price currency.Money) (Item, error) {
	if err := self.checkPrice(price); err != nil {
		return Item{}, err
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	s, _, err := self.locked_find(selector)
	if err != nil {
		return Item{}, err
	}
	self.log.Debugf("inventory price item=%s before=%s after=%s", s.name, s.price.String(), price.String())
	s.price = price
	return s.item(), nil
}

func (self *Inventory) checkPrice(price currency.Money) error {
	if price.Currency != self.home {
		return &currency.ErrCurrencyMismatch{A: price.Currency, B: self.home}
	}
	if price.Amount <= 0 {
		return errors.NotValidf("price=%s", price.String())
	}
	return nil
}

// Repeated lines of one item are summed.
func (self *Inventory) locked_check(lines []Line) error {
	totals := make(map[string]int, len(lines))
	for _, line := range lines {
		s, err := self.locked_get(line.Item)
		if err != nil {
			return err
		}
		if line.Quantity <= 0 {
			return &ErrInvalidQuantity{Quantity: line.Quantity}
		}
		totals[line.Item] += line.Quantity
		if err := s.has(totals[line.Item]); err != nil {
			return err
		}
	}
	return nil
}

func (self *Inventory) locked_get(name string) (*stock, error) {
	for _, s := range self.ss {
		if s.name == name {
			return s, nil
		}
	}
	return nil, &ErrUnknownItem{Selector: name}
}

// index wins over name, "3" is always fourth item
func (self *Inventory) locked_find(selector string) (*stock, int, error) {
	selector = strings.TrimSpace(selector)
	if i, err := strconv.Atoi(selector); err == nil && isDigits(selector) {
		if i >= 0 && i < len(self.ss) {
			return self.ss[i], i, nil
		}
	}
	for i, s := range self.ss {
		if s.name == selector {
			return s, i, nil
		}
	}
	return nil, -1, &ErrUnknownItem{Selector: selector}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
