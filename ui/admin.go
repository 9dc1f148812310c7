package ui

import (
	"crypto/subtle"
	"fmt"
	"io"
	"strings"
)

func (self *Shell) cmdAdmin(w io.Writer, args []string) error {
	if len(args) == 0 {
		return &ErrUsage{Usage: usageAdmin}
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "login":
		if len(rest) != 1 {
			return &ErrUsage{Usage: "admin login PASSWORD"}
		}
		if !self.checkPassword(rest[0]) {
			self.log.Infof("admin login failed")
			return &ErrWrongPassword{}
		}
		self.admin = true
		self.log.Infof("admin login")
		fmt.Fprintln(w, "Operator mode.")
		return nil
	case "logout":
		self.admin = false
		fmt.Fprintln(w, "Customer mode.")
		return nil
	}

	if self.opt.AuthEnable && !self.admin {
		return &ErrAdminRequired{}
	}
	eng := self.eng
	switch sub {
	case "add":
		if len(rest) != 3 {
			return &ErrUsage{Usage: "admin add NAME STOCK PRICE"}
		}
		stock, err := parseInt("stock", rest[1])
		if err != nil {
			return err
		}
		price, err := ParsePrice(rest[2], eng.Home())
		if err != nil {
			return err
		}
		if err := eng.AddItem(rest[0], stock, price); err != nil {
			return err
		}
		fmt.Fprintf(w, "Added %s stock %d price %s.\n", rest[0], stock, price.Symbol())

	case "remove":
		if len(rest) != 1 {
			return &ErrUsage{Usage: "admin remove ITEM"}
		}
		item, err := eng.RemoveItem(rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Removed %s.\n", item.Name)

	case "restock":
		if len(rest) != 2 {
			return &ErrUsage{Usage: "admin restock ITEM COUNT"}
		}
		delta, err := parseInt("count", rest[1])
		if err != nil {
			return err
		}
		item, err := eng.Restock(rest[0], delta)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Restocked %s +%d, stock %d.\n", item.Name, delta, item.Stock)

	case "price":
		if len(rest) != 2 {
			return &ErrUsage{Usage: "admin price ITEM PRICE"}
		}
		price, err := ParsePrice(rest[1], eng.Home())
		if err != nil {
			return err
		}
		item, err := eng.SetPrice(rest[0], price)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Price of %s is now %s.\n", item.Name, item.Price.Symbol())

	case "collect":
		RenderCollect(w, eng.CollectCash(), eng.Home())
		RenderTill(w, eng.Till())

	case "till":
		RenderTill(w, eng.Till())

	case "journal":
		RenderJournal(w, eng.Journal())
		fmt.Fprintf(w, "Merchant balance: %s\n", eng.Merchant().Balance().Symbol())

	default:
		return &ErrUsage{Usage: usageAdmin}
	}
	return nil
}

func (self *Shell) checkPassword(p string) bool {
	ok := false
	for _, expect := range self.opt.Passwords {
		if subtle.ConstantTimeCompare([]byte(p), []byte(expect)) == 1 {
			ok = true
		}
	}
	return ok
}
