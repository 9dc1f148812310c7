package engine

import (
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/engine/inventory"
	"github.com/temoto/vendsim/money"
)

// Operator service, serialized with purchases.

func (self *Engine) AddItem(name string, stock int, price currency.Money) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	if err := self.inventory.AddItem(name, stock, price); err != nil {
		return err
	}
	self.log.Infof("admin add item=%s stock=%d price=%s", name, stock, price.String())
	return nil
}

// RemoveItem also drops item from cart.
func (self *Engine) RemoveItem(selector string) (inventory.Item, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	item, err := self.inventory.RemoveItem(selector)
	if err != nil {
		return item, err
	}
	self.cart.remove(item.Name)
	self.log.Infof("admin remove item=%s", item.Name)
	return item, nil
}

func (self *Engine) Restock(selector string, delta int) (inventory.Item, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	item, err := self.inventory.Restock(selector, delta)
	if err != nil {
		return item, err
	}
	self.log.Infof("admin restock item=%s delta=%d stock=%d", item.Name, delta, item.Stock)
	return item, nil
}

func (self *Engine) SetPrice(selector string, price currency.Money) (inventory.Item, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	item, err := self.inventory.SetPrice(selector, price)
	if err != nil {
		return item, err
	}
	self.log.Infof("admin price item=%s price=%s", item.Name, price.String())
	return item, nil
}

func (self *Engine) CollectCash() money.CollectReport {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.till.Collect()
}
