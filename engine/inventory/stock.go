package inventory

import (
	"fmt"

	"github.com/temoto/vendsim/currency"
)

// Item is catalog entry. Values returned from Inventory are copies.
type Item struct {
	Name  string
	Stock int
	Price currency.Money
}

func (self Item) String() string {
	return fmt.Sprintf("item(name=%s stock=%d price=%s)", self.Name, self.Stock, self.Price.String())
}

// Line is requested quantity of one item.
type Line struct {
	Item     string
	Quantity int
}

// stock is mutable catalog record, guarded by Inventory.mu
type stock struct {
	name  string
	value int
	price currency.Money
}

func (s *stock) item() Item { return Item{Name: s.name, Stock: s.value, Price: s.price} }

func (s *stock) has(quantity int) error {
	if quantity <= 0 {
		return &ErrInvalidQuantity{Quantity: quantity}
	}
	if s.value == 0 {
		return &ErrOutOfStock{Item: s.name}
	}
	if quantity > s.value {
		return &ErrInsufficientStock{Item: s.name, Available: s.value, Requested: quantity}
	}
	return nil
}

func (s *stock) spend(quantity int) {
	if quantity > s.value {
		panic(fmt.Sprintf("code error stock=%s spend=%d > value=%d", s.name, quantity, s.value))
	}
	s.value -= quantity
}
