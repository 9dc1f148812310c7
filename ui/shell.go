// Package ui is interactive shell over engine: reads commands, renders results and errors.
package ui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/temoto/vendsim/engine"
	"github.com/temoto/vendsim/log2"
)

const (
	usageAdd     = "add ITEM [QUANTITY]"
	usageCash    = "cash NOMINAL... (1000 500 or 1000x2)"
	usageCard    = "card CARD"
	usagePay     = "pay cash NOMINAL... | pay card CARD"
	usageReceipt = "receipt [SEQ]"
	usageAdmin   = "admin login PASSWORD | logout | add NAME STOCK PRICE | remove ITEM | restock ITEM COUNT | price ITEM PRICE | collect | till | journal"
)

const help = `Customer:
  list                 items with stock and price
  add ITEM [QTY]       put item into cart, ITEM is number or "name"
  cart                 show cart
  done                 price the cart
  cancel               empty the cart
  cash NOMINAL...      pay with cash, e.g. cash 1000 1000 500 or cash 1000x2,500
  cards                list cards
  card CARD            pay with card number or index
  pay cash|card ...    same as cash or card
  receipt [SEQ]        print last or given receipt
Operator:
  admin login PASSWORD
  admin add NAME STOCK PRICE
  admin remove ITEM
  admin restock ITEM COUNT
  admin price ITEM PRICE
  admin collect        take out collected cash, refill change
  admin till           cash box contents
  admin journal        all purchases
  admin logout
  quit
`

type Options struct {
	ReceiptQR bool
	// AuthEnable requires admin login before operator commands.
	AuthEnable bool
	Passwords  []string
}

type command struct {
	name  string
	about string
	run   func(w io.Writer, args []string) error
}

type Shell struct {
	log  *log2.Log
	eng  *engine.Engine
	out  io.Writer
	opt  Options
	stop func()

	admin    bool
	commands []command
}

// NewShell writes all output to out. stop is called by quit command.
func NewShell(log *log2.Log, eng *engine.Engine, out io.Writer, opt Options, stop func()) *Shell {
	self := &Shell{
		log:  log,
		eng:  eng,
		out:  out,
		opt:  opt,
		stop: stop,
	}
	self.commands = []command{
		{"help", "show commands", self.cmdHelp},
		{"list", "items with stock and price", self.cmdList},
		{"cards", "list cards", self.cmdCards},
		{"cart", "show cart", self.cmdCart},
		{"add", "put item into cart", self.cmdAdd},
		{"done", "price the cart", self.cmdDone},
		{"cancel", "empty the cart", self.cmdCancel},
		{"pay", "pay with cash or card", self.cmdPay},
		{"cash", "pay with cash", self.cmdCash},
		{"card", "pay with card", self.cmdCard},
		{"receipt", "print receipt", self.cmdReceipt},
		{"admin", "operator service", self.cmdAdmin},
		{"quit", "exit", self.cmdQuit},
	}
	return self
}

// Exec runs one input line, errors are rendered as messages.
func (self *Shell) Exec(line string) {
	buf := bytes.NewBuffer(nil)
	if err := self.Run(buf, line); err != nil {
		self.log.Debugf("ui line=%q err=%s", line, errors.ErrorStack(err))
		fmt.Fprintln(buf, Message(err))
	}
	if err := writeReply(self.out, buf.Bytes()); err != nil {
		self.log.Errorf("ui write line=%q err=%v", line, err)
	}
}

// writeReply retries short writes, a writer stuck at zero bytes gets io.ErrShortWrite.
func writeReply(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

func (self *Shell) Run(w io.Writer, line string) error {
	words := Fields(line)
	if len(words) == 0 {
		return nil
	}
	name := strings.ToLower(words[0])
	if name == "exit" {
		name = "quit"
	}
	for _, c := range self.commands {
		if c.name == name {
			return c.run(w, words[1:])
		}
	}
	return &ErrUnknownCommand{Command: words[0]}
}

func (self *Shell) cmdHelp(w io.Writer, args []string) error {
	_, err := io.WriteString(w, help)
	return err
}

func (self *Shell) cmdList(w io.Writer, args []string) error {
	inv := self.eng.Inventory()
	RenderItems(w, inv.List())
	if inv.AllOutOfStock() && inv.Len() != 0 {
		fmt.Fprintln(w, "Everything is sold out.")
	} else if !self.eng.Till().CashAvailable() {
		fmt.Fprintln(w, "Card payment only right now.")
	}
	return nil
}

func (self *Shell) cmdCards(w io.Writer, args []string) error {
	RenderCards(w, self.eng.Bank().Cards())
	return nil
}

func (self *Shell) cmdCart(w io.Writer, args []string) error {
	lines := self.eng.Cart()
	if len(lines) == 0 {
		fmt.Fprintln(w, "Cart is empty.")
		return nil
	}
	inv := self.eng.Inventory()
	rls := make([]engine.ReceiptLine, 0, len(lines))
	for _, l := range lines {
		item, err := inv.Get(l.Item)
		if err != nil {
			return err
		}
		rls = append(rls, engine.ReceiptLine{Item: l.Item, UnitPrice: item.Price, Quantity: l.Quantity, Subtotal: item.Price.Mul(l.Quantity)})
	}
	renderLines(w, rls)
	return nil
}

func (self *Shell) cmdAdd(w io.Writer, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return &ErrUsage{Usage: usageAdd}
	}
	quantity := 1
	if len(args) == 2 {
		var err error
		if quantity, err = parseInt("quantity", args[1]); err != nil {
			return err
		}
	}
	item, err := self.eng.AddToCart(args[0], quantity)
	if err != nil {
		return err
	}
	inCart := 0
	for _, l := range self.eng.Cart() {
		if l.Item == item.Name {
			inCart = l.Quantity
		}
	}
	fmt.Fprintf(w, "Added %s x%d, in cart %d.\n", item.Name, quantity, inCart)
	return nil
}

func (self *Shell) cmdDone(w io.Writer, args []string) error {
	q, err := self.eng.Done()
	if err != nil {
		return err
	}
	RenderQuote(w, q)
	if !q.Empty {
		fmt.Fprintln(w, "Pay with: cash NOMINAL... or card CARD")
	}
	return nil
}

func (self *Shell) cmdCancel(w io.Writer, args []string) error {
	self.eng.Cancel()
	fmt.Fprintln(w, "Cart cleared.")
	return nil
}

func (self *Shell) cmdPay(w io.Writer, args []string) error {
	if len(args) == 0 {
		return &ErrUsage{Usage: usagePay}
	}
	kind, err := engine.ParsePaymentKind(args[0])
	if err != nil {
		return err
	}
	switch kind {
	case engine.PaymentCash:
		return self.cmdCash(w, args[1:])
	case engine.PaymentCard:
		return self.cmdCard(w, args[1:])
	}
	return &ErrUsage{Usage: usagePay}
}

func (self *Shell) cmdCash(w io.Writer, args []string) error {
	if len(args) == 0 {
		return &ErrUsage{Usage: usageCash}
	}
	tender, err := ParseTender(args)
	if err != nil {
		return err
	}
	r, err := self.eng.SettleCash(tender)
	return self.settled(w, r, err)
}

func (self *Shell) cmdCard(w io.Writer, args []string) error {
	if len(args) != 1 {
		return &ErrUsage{Usage: usageCard}
	}
	r, err := self.eng.SettleCard(args[0])
	return self.settled(w, r, err)
}

func (self *Shell) settled(w io.Writer, r *engine.Receipt, err error) error {
	if err != nil {
		return err
	}
	if r == nil {
		fmt.Fprintln(w, "Cart is empty, nothing to pay.")
		return nil
	}
	RenderDispensed(w, r)
	fmt.Fprintf(w, "Thank you! Type `receipt` to print receipt #%d.\n", r.Seq)
	return nil
}

func (self *Shell) cmdReceipt(w io.Writer, args []string) error {
	if len(args) > 1 {
		return &ErrUsage{Usage: usageReceipt}
	}
	journal := self.eng.Journal()
	if len(args) == 0 {
		if len(journal) == 0 {
			return &ErrNoReceipt{}
		}
		return RenderReceipt(w, journal[len(journal)-1], self.opt.ReceiptQR)
	}
	seq, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 32)
	if err != nil {
		return &ErrBadNumber{What: "receipt", Text: args[0], Hint: "enter receipt number"}
	}
	for _, r := range journal {
		if r.Seq == uint32(seq) {
			return RenderReceipt(w, r, self.opt.ReceiptQR)
		}
	}
	return &ErrNoReceipt{Seq: uint32(seq)}
}

func (self *Shell) cmdQuit(w io.Writer, args []string) error {
	fmt.Fprintln(w, "Bye.")
	if self.stop != nil {
		self.stop()
	}
	return nil
}
