package inventory

import "fmt"

type ErrUnknownItem struct {
	Selector string
}

func (e *ErrUnknownItem) Error() string {
	return fmt.Sprintf("non-existent item or index=%s", e.Selector)
}

type ErrInvalidQuantity struct {
	Quantity int
}

func (e *ErrInvalidQuantity) Error() string {
	return fmt.Sprintf("invalid quantity=%d", e.Quantity)
}

type ErrOutOfStock struct {
	// Item is empty when whole inventory is out of stock.
	Item string
}

func (e *ErrOutOfStock) Error() string {
	if e.Item == "" {
		return "all items out of stock"
	}
	return fmt.Sprintf("item=%s out of stock", e.Item)
}

type ErrInsufficientStock struct {
	Item      string
	Available int
	Requested int
}

func (e *ErrInsufficientStock) Error() string {
	return fmt.Sprintf("item=%s stock=%d requested=%d", e.Item, e.Available, e.Requested)
}

type ErrDuplicateItem struct {
	Item string
}

func (e *ErrDuplicateItem) Error() string {
	return fmt.Sprintf("item=%s already exists", e.Item)
}

type ErrTooManyItems struct {
	Max int
}

func (e *ErrTooManyItems) Error() string {
	return fmt.Sprintf("inventory full max_items=%d", e.Max)
}

type ErrRestockExceedsCapacity struct {
	Item  string
	Stock int
	Delta int
	Max   int
}

func (e *ErrRestockExceedsCapacity) Error() string {
	return fmt.Sprintf("item=%s stock=%d + restock=%d exceeds max_stock=%d", e.Item, e.Stock, e.Delta, e.Max)
}
