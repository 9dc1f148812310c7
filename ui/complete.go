package ui

import (
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
)

var adminSuggests = []prompt.Suggest{
	{Text: "login", Description: "PASSWORD"},
	{Text: "logout"},
	{Text: "add", Description: "NAME STOCK PRICE"},
	{Text: "remove", Description: "ITEM"},
	{Text: "restock", Description: "ITEM COUNT"},
	{Text: "price", Description: "ITEM PRICE"},
	{Text: "collect"},
	{Text: "till"},
	{Text: "journal"},
}

// Complete is go-prompt completer.
func (self *Shell) Complete(d prompt.Document) []prompt.Suggest {
	return self.suggest(d.TextBeforeCursor())
}

func (self *Shell) suggest(before string) []prompt.Suggest {
	words := Fields(before)
	current := ""
	if len(words) != 0 && !strings.HasSuffix(before, " ") {
		current, words = words[len(words)-1], words[:len(words)-1]
	}
	if len(words) == 0 {
		ss := make([]prompt.Suggest, len(self.commands))
		for i, c := range self.commands {
			ss[i] = prompt.Suggest{Text: c.name, Description: c.about}
		}
		return prompt.FilterHasPrefix(ss, current, true)
	}

	var ss []prompt.Suggest
	switch strings.ToLower(words[0]) {
	case "add":
		if len(words) == 1 {
			ss = self.itemSuggests()
		}
	case "card":
		if len(words) == 1 {
			ss = self.cardSuggests()
		}
	case "pay":
		switch {
		case len(words) == 1:
			ss = []prompt.Suggest{{Text: "cash"}, {Text: "card"}}
		case len(words) == 2 && strings.EqualFold(words[1], "card"):
			ss = self.cardSuggests()
		}
	case "admin":
		switch {
		case len(words) == 1:
			ss = adminSuggests
		case len(words) == 2:
			switch strings.ToLower(words[1]) {
			case "remove", "restock", "price":
				ss = self.itemSuggests()
			}
		}
	}
	return prompt.FilterFuzzy(ss, current, true)
}

func (self *Shell) itemSuggests() []prompt.Suggest {
	items := self.eng.Inventory().List()
	ss := make([]prompt.Suggest, len(items))
	for i, item := range items {
		text := item.Name
		if strings.ContainsAny(text, " \t") {
			text = strconv.Quote(text)
		}
		ss[i] = prompt.Suggest{Text: text, Description: item.Price.Symbol()}
	}
	return ss
}

func (self *Shell) cardSuggests() []prompt.Suggest {
	cards := self.eng.Bank().Cards()
	ss := make([]prompt.Suggest, len(cards))
	for i, c := range cards {
		ss[i] = prompt.Suggest{Text: strconv.Itoa(i), Description: c.MaskedNumber() + " " + c.Account().Owner}
	}
	return ss
}
