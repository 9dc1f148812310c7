package bank

import (
	"fmt"

	"github.com/temoto/vendsim/currency"
)

type ErrInsufficientBalance struct {
	Account   string // masked number
	Requested currency.Money
	Available currency.Money
}

func (e *ErrInsufficientBalance) Error() string {
	return fmt.Sprintf("insufficient balance account=%s requested=%s available=%s",
		e.Account, e.Requested.String(), e.Available.String())
}

type ErrUnknownCard struct {
	Selector string
}

func (e *ErrUnknownCard) Error() string {
	return fmt.Sprintf("unknown card=%s", e.Selector)
}
