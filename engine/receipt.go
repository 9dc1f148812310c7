package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/temoto/vendsim/currency"
)

type PaymentKind uint8

const (
	PaymentInvalid PaymentKind = iota
	PaymentCash
	PaymentCard
)

func (k PaymentKind) String() string {
	switch k {
	case PaymentCash:
		return "cash"
	case PaymentCard:
		return "card"
	}
	return "invalid"
}

func ParsePaymentKind(s string) (PaymentKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentCash, nil
	case "card":
		return PaymentCard, nil
	}
	return PaymentInvalid, &ErrUnsupportedPaymentMethod{Method: s}
}

type ReceiptLine struct {
	Item      string
	UnitPrice currency.Money
	Quantity  int
	Subtotal  currency.Money
}

// Quote is priced cart, result of Done().
type Quote struct {
	Lines []ReceiptLine
	Total currency.Money
	// CashAvailable false means machine is card-only now.
	CashAvailable bool
	Empty         bool
}

// Receipt is immutable record of settled purchase.
type Receipt struct {
	ID    uuid.UUID
	Seq   uint32
	Time  time.Time
	Kind  PaymentKind
	Lines []ReceiptLine
	// Total in home currency.
	Total currency.Money

	// card only
	Card    string // masked
	Charged currency.Money

	// cash only
	Tendered    currency.Money
	Change      currency.Money
	ChangeGiven map[currency.Nominal]uint
}

func (self *Receipt) ItemCount() int {
	n := 0
	for _, l := range self.Lines {
		n += l.Quantity
	}
	return n
}
