package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/temoto/vendsim/bank"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/engine"
	"github.com/temoto/vendsim/engine/inventory"
	"github.com/temoto/vendsim/money"
)

// Message turns error into one line the customer or operator can act on.
// Annotated errors are unwrapped to their cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch e := errors.Cause(err).(type) {
	case *inventory.ErrUnknownItem:
		return fmt.Sprintf("No item %q. Type `list` and use item number or exact name.", e.Selector)
	case *inventory.ErrInvalidQuantity:
		return fmt.Sprintf("Quantity %d is invalid, enter a whole number above zero.", e.Quantity)
	case *inventory.ErrOutOfStock:
		if e.Item == "" {
			return "Sorry, everything is sold out."
		}
		return fmt.Sprintf("%s is sold out, pick another item.", e.Item)
	case *inventory.ErrInsufficientStock:
		return fmt.Sprintf("%s has only %d left but %d requested, choose smaller quantity.", e.Item, e.Available, e.Requested)
	case *inventory.ErrDuplicateItem:
		return fmt.Sprintf("%s already exists, use another name or restock it.", e.Item)
	case *inventory.ErrTooManyItems:
		return fmt.Sprintf("Catalog is full with %d items, remove an item first.", e.Max)
	case *inventory.ErrRestockExceedsCapacity:
		room := e.Max - e.Stock
		if room < 0 {
			room = 0
		}
		return fmt.Sprintf("%s holds %d of %d, restock at most %d.", e.Item, e.Stock, e.Max, room)

	case *money.ErrUnsupportedDenomination:
		return fmt.Sprintf("%s is not accepted, all inserted cash is returned.", humanize.Comma(int64(e.Nominal)))
	case *money.ErrTenderTooLarge:
		return fmt.Sprintf("Cannot take %s pieces of %s, all inserted cash is returned.",
			humanize.Comma(int64(e.Count)), humanize.Comma(int64(e.Nominal)))
	case *money.ErrInsufficientFunds:
		return fmt.Sprintf("Inserted %s is less than total %s, all inserted cash is returned. Insert more or pay by card.",
			e.Tendered.Symbol(), e.Required.Symbol())
	case *money.ErrChangeUnavailable:
		return fmt.Sprintf("Machine cannot give change %s, all inserted cash is returned. Pay exact amount or use a card.",
			e.Change.Symbol())

	case *bank.ErrInsufficientBalance:
		return fmt.Sprintf("Card balance %s is not enough for %s. Use another card or pay cash.",
			e.Available.Symbol(), e.Requested.Symbol())
	case *bank.ErrUnknownCard:
		return fmt.Sprintf("No card %q. Type `cards` and use card number or index.", e.Selector)

	case *engine.ErrUnsupportedPaymentMethod:
		if e.Method == engine.PaymentCash.String() {
			return "Cash is not accepted right now, pay by card."
		}
		return fmt.Sprintf("Payment method %q is not supported, use cash or card.", e.Method)

	case *currency.ErrCurrencyMismatch:
		return fmt.Sprintf("Amounts in %s and %s cannot be combined.", e.A, e.B)
	case *currency.ErrUnknownCurrency:
		return fmt.Sprintf("Currency %s is not known to this machine.", e.Code)

	case *ErrUsage:
		return "Usage: " + e.Usage
	case *ErrBadNumber:
		return fmt.Sprintf("Cannot read %s=%q, %s.", e.What, e.Text, e.Hint)
	case *ErrUnknownCommand:
		return fmt.Sprintf("Unknown command %q, type `help`.", e.Command)
	case *ErrAdminRequired:
		return "Operator login required: admin login PASSWORD"
	case *ErrWrongPassword:
		return "Password does not match."
	case *ErrNoReceipt:
		if e.Seq == 0 {
			return "No purchases yet."
		}
		return fmt.Sprintf("No receipt #%d.", e.Seq)
	}
	return "Error: " + err.Error()
}

type ErrUsage struct {
	Usage string
}

func (e *ErrUsage) Error() string { return "usage: " + e.Usage }

type ErrBadNumber struct {
	What string
	Text string
	Hint string
}

func (e *ErrBadNumber) Error() string { return fmt.Sprintf("invalid %s=%s", e.What, e.Text) }

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string { return fmt.Sprintf("unknown command=%s", e.Command) }

type ErrAdminRequired struct{}

func (e *ErrAdminRequired) Error() string { return "admin login required" }

type ErrWrongPassword struct{}

func (e *ErrWrongPassword) Error() string { return "admin password mismatch" }

type ErrNoReceipt struct {
	Seq uint32
}

func (e *ErrNoReceipt) Error() string { return fmt.Sprintf("receipt seq=%d not found", e.Seq) }
