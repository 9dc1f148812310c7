package engine

import (
	"github.com/temoto/vendsim/engine/inventory"
)

// cart keeps item order of first add, repeated adds are merged.
type cart struct {
	lines []inventory.Line
}

func (self *cart) empty() bool { return len(self.lines) == 0 }
func (self *cart) clear()      { self.lines = nil }

func (self *cart) quantity(item string) int {
	for _, l := range self.lines {
		if l.Item == item {
			return l.Quantity
		}
	}
	return 0
}

func (self *cart) add(item string, quantity int) int {
	for i := range self.lines {
		if self.lines[i].Item == item {
			self.lines[i].Quantity += quantity
			return self.lines[i].Quantity
		}
	}
	self.lines = append(self.lines, inventory.Line{Item: item, Quantity: quantity})
	return quantity
}

func (self *cart) remove(item string) {
	for i, l := range self.lines {
		if l.Item == item {
			self.lines = append(self.lines[:i], self.lines[i+1:]...)
			return
		}
	}
}

func (self *cart) copyLines() []inventory.Line {
	ls := make([]inventory.Line, len(self.lines))
	copy(ls, self.lines)
	return ls
}
