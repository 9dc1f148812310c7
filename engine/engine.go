// Package engine settles purchases: cart, quote, cash or card payment, receipt.
// Inventory decrement and payment either both happen or neither does.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/temoto/vendsim/bank"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/engine/inventory"
	"github.com/temoto/vendsim/log2"
	"github.com/temoto/vendsim/money"
)

type Engine struct {
	log       *log2.Log
	inventory *inventory.Inventory
	till      *money.Till
	bank      *bank.Bank
	merchant  *bank.Account
	now       func() time.Time

	// one lock for inventory, till and accounts during whole operation
	mu      sync.Mutex
	state   State
	last    State
	cart    cart
	seq     uint32
	journal []*Receipt
}

func New(log *log2.Log, inv *inventory.Inventory, till *money.Till, b *bank.Bank, merchant *bank.Account) (*Engine, error) {
	home := inv.Home()
	if till.Home() != home {
		return nil, errors.Annotate(&currency.ErrCurrencyMismatch{A: till.Home(), B: home}, "till")
	}
	if merchant.Currency() != home {
		return nil, errors.Annotate(&currency.ErrCurrencyMismatch{A: merchant.Currency(), B: home}, "merchant account")
	}
	return &Engine{
		log:       log,
		inventory: inv,
		till:      till,
		bank:      b,
		merchant:  merchant,
		now:       time.Now,
		state:     StateBuildingCart,
	}, nil
}

func (self *Engine) Home() currency.Code             { return self.inventory.Home() }
func (self *Engine) Inventory() *inventory.Inventory { return self.inventory }
func (self *Engine) Till() *money.Till               { return self.till }
func (self *Engine) Bank() *bank.Bank                { return self.bank }
func (self *Engine) Merchant() *bank.Account         { return self.merchant }

func (self *Engine) State() State {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.state
}

// Last returns outcome of latest settlement attempt: Settled, Aborted or Invalid if none.
func (self *Engine) Last() State {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.last
}

func (self *Engine) Cart() []inventory.Line {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.cart.copyLines()
}

// Journal returns settled receipts, oldest first.
func (self *Engine) Journal() []*Receipt {
	self.mu.Lock()
	defer self.mu.Unlock()
	rs := make([]*Receipt, len(self.journal))
	copy(rs, self.journal)
	return rs
}

// AddToCart checks running quantity of item against stock, nothing is reserved.
// Adding after Done() goes back to editing the cart.
func (self *Engine) AddToCart(selector string, quantity int) (inventory.Item, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if quantity <= 0 {
		return inventory.Item{}, &inventory.ErrInvalidQuantity{Quantity: quantity}
	}
	item, err := self.inventory.Lookup(selector)
	if err != nil {
		return inventory.Item{}, err
	}
	if err := self.inventory.Reserve(item.Name, self.cart.quantity(item.Name)+quantity); err != nil {
		return item, err
	}
	total := self.cart.add(item.Name, quantity)
	self.log.Debugf("engine cart add item=%s quantity=%d total=%d", item.Name, quantity, total)
	self.locked_setState(StateBuildingCart)
	return item, nil
}

// Done prices the cart. Empty cart gives Quote.Empty and stays in BuildingCart.
func (self *Engine) Done() (Quote, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.locked_done()
}

// Cancel abandons the cart.
func (self *Engine) Cancel() {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.cart.clear()
	self.locked_setState(StateBuildingCart)
}

// SettleCash pays the cart with tendered cash.
// Empty cart returns nil receipt and nil error.
// On error tender is returned untouched and nothing changes.
func (self *Engine) SettleCash(tender money.Tender) (*Receipt, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	q, err := self.locked_done()
	if err != nil || q.Empty {
		return nil, err
	}
	self.locked_setState(StateCashFlow)

	home := self.Home()
	lines := self.cart.copyLines()
	tendered := money.Sum(tender)
	change := tendered - q.Total.Amount
	var plan *currency.NominalGroup

	seq := NewSeq("cash").
		Append(Func{Name: "accept", V: func() error {
			if !self.till.CashAvailable() {
				return &ErrUnsupportedPaymentMethod{Method: PaymentCash.String()}
			}
			if err := self.till.Validate(tender); err != nil {
				return err
			}
			if !money.IsSufficient(tendered, q.Total.Amount) {
				return &money.ErrInsufficientFunds{Tendered: currency.New(tendered, home), Required: q.Total}
			}
			return nil
		}}).
		Append(Func{Name: "change", V: func() (err error) {
			plan, err = self.till.PlanChange(tender, change)
			return err
		}, F: func() error {
			return self.till.Settle(tender, plan)
		}}).
		Append(Func{Name: "inventory",
			V: func() error { return self.inventory.Check(lines) },
			F: func() error { return self.inventory.Commit(lines) },
		})

	return self.locked_settle(seq, q, func(r *Receipt) {
		r.Kind = PaymentCash
		r.Tendered = currency.New(tendered, home)
		r.Change = currency.New(change, home)
		r.ChangeGiven = plan.Map()
	})
}

// SettleCard charges card account in its own currency, merchant receives home currency.
// Empty cart returns nil receipt and nil error.
func (self *Engine) SettleCard(selector string) (*Receipt, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	q, err := self.locked_done()
	if err != nil || q.Empty {
		return nil, err
	}
	self.locked_setState(StateCardFlow)

	seq := NewSeq("card")
	card, err := self.bank.Card(selector)
	var charged currency.Money
	if err == nil {
		charged, err = self.bank.Rates().Convert(q.Total, card.Account().Currency())
	}
	if err != nil {
		return self.locked_settle(seq.Append(Fail{E: err}), q, nil)
	}
	lines := self.cart.copyLines()
	description := fmt.Sprintf("vending purchase #%d %s", self.seq+1, q.Total.String())

	seq.
		Append(Func{Name: "pay", F: func() error {
			return card.Pay(charged, nil, description)
		}}).
		Append(Func{Name: "inventory",
			V: func() error { return self.inventory.Check(lines) },
			F: func() error { return self.inventory.Commit(lines) },
		}).
		Append(Func{Name: "merchant", F: func() error {
			return self.merchant.Deposit(q.Total)
		}})

	return self.locked_settle(seq, q, func(r *Receipt) {
		r.Kind = PaymentCard
		r.Card = card.MaskedNumber()
		r.Charged = charged
	})
}

func (self *Engine) locked_done() (Quote, error) {
	q, err := self.locked_quote()
	switch {
	case err != nil, q.Empty:
		self.locked_setState(StateBuildingCart)
	default:
		self.locked_setState(StateAwaitingPayment)
	}
	return q, err
}

func (self *Engine) locked_quote() (Quote, error) {
	q := Quote{
		Total:         currency.New(0, self.Home()),
		CashAvailable: self.till.CashAvailable(),
	}
	if self.cart.empty() {
		q.Empty = true
		return q, nil
	}
	lines := self.cart.copyLines()
	if err := self.inventory.Check(lines); err != nil {
		return Quote{}, err
	}
	q.Lines = make([]ReceiptLine, 0, len(lines))
	for _, l := range lines {
		item, err := self.inventory.Get(l.Item)
		if err != nil {
			return Quote{}, err
		}
		sub := item.Price.Mul(l.Quantity)
		if q.Total, err = q.Total.Add(sub); err != nil {
			return Quote{}, errors.Annotatef(err, "item=%s", item.Name)
		}
		q.Lines = append(q.Lines, ReceiptLine{
			Item:      item.Name,
			UnitPrice: item.Price,
			Quantity:  l.Quantity,
			Subtotal:  sub,
		})
	}
	return q, nil
}

func (self *Engine) locked_settle(seq *Seq, q Quote, fill func(*Receipt)) (*Receipt, error) {
	if err := seq.Validate(); err != nil {
		return nil, self.locked_abort(seq.String(), err)
	}
	if step, err := seq.Do(); err != nil {
		return nil, self.locked_abort(step, err)
	}

	self.seq++
	r := &Receipt{
		ID:    uuid.New(),
		Seq:   self.seq,
		Time:  self.now(),
		Lines: q.Lines,
		Total: q.Total,
	}
	fill(r)
	self.journal = append(self.journal, r)
	self.cart.clear()
	self.locked_setState(StateSettled)
	self.log.Infof("engine settled #%d kind=%s total=%s", r.Seq, r.Kind.String(), r.Total.String())
	self.last = StateSettled
	self.locked_setState(StateBuildingCart)
	return r, nil
}

// Cart is kept for retry with other payment.
func (self *Engine) locked_abort(step string, err error) error {
	self.locked_setState(StateAborted)
	self.log.Debugf("engine aborted step=%s err=%v", step, err)
	self.last = StateAborted
	self.locked_setState(StateBuildingCart)
	return err
}

func (self *Engine) locked_setState(s State) {
	if self.state != s {
		self.log.Debugf("engine state %s -> %s", self.state.String(), s.String())
		self.state = s
	}
}
