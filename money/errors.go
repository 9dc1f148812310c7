package money

import (
	"fmt"

	"github.com/temoto/vendsim/currency"
)

type ErrUnsupportedDenomination struct {
	Nominal currency.Nominal
}

func (e *ErrUnsupportedDenomination) Error() string {
	return fmt.Sprintf("denomination=%d not accepted", e.Nominal)
}

// ErrInsufficientFunds is cash underpay, whole tender goes back.
type ErrInsufficientFunds struct {
	Tendered currency.Money
	Required currency.Money
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient cash tendered=%s required=%s", e.Tendered.String(), e.Required.String())
}

type ErrChangeUnavailable struct {
	Change    currency.Money
	Remainder currency.Money
}

func (e *ErrChangeUnavailable) Error() string {
	return fmt.Sprintf("cannot make change=%s remainder=%s", e.Change.String(), e.Remainder.String())
}

// ErrTenderTooLarge is count of one denomination that would overflow till value.
type ErrTenderTooLarge struct {
	Nominal currency.Nominal
	Count   uint
}

func (e *ErrTenderTooLarge) Error() string {
	return fmt.Sprintf("tender denomination=%d count=%d too large", e.Nominal, e.Count)
}
