package engine_config

import "fmt"

type Config struct {
	Inventory Inventory `hcl:"inventory"`
}

type Inventory struct {
	MaxItems    int    `hcl:"max_items"`
	MaxStock    int    `hcl:"max_stock"`
	RandomStock bool   `hcl:"random_stock"`
	Items       []Item `hcl:"item"`
}

type Item struct {
	Name  string  `hcl:"name,key"`
	Stock int     `hcl:"stock"`
	Price float64 `hcl:"price"` // major units of home currency
}

func (self *Item) String() string {
	return fmt.Sprintf("inventory.%s stock=%d price=%g", self.Name, self.Stock, self.Price)
}
