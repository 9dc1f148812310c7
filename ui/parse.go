package ui

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/money"
)

// Fields splits line by whitespace, "double" or 'single' quotes keep spaces.
// Unterminated quote runs to end of line.
func Fields(line string) []string {
	words := make([]string, 0, 8)
	var b strings.Builder
	var quote rune
	inWord := false
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				b.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, b.String())
				b.Reset()
				inWord = false
			}
		default:
			b.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		words = append(words, b.String())
	}
	return words
}

// ParseTender reads inserted cash: "1000 500 1000", "1000x2,500" or "1000*2".
func ParseTender(args []string) (money.Tender, error) {
	t := make(money.Tender)
	for _, arg := range args {
		for _, word := range strings.Split(arg, ",") {
			word = strings.TrimSpace(word)
			if word == "" {
				continue
			}
			nominalText, countText := word, "1"
			if i := strings.IndexAny(word, "x*"); i >= 0 {
				nominalText, countText = word[:i], word[i+1:]
			}
			nominal, err := strconv.ParseUint(strings.ReplaceAll(nominalText, "_", ""), 10, 32)
			if err != nil || nominal == 0 {
				return nil, &ErrBadNumber{What: "denomination", Text: word, Hint: "insert like 1000 500 or 1000x2"}
			}
			count, err := strconv.ParseUint(countText, 10, 32)
			if err != nil || count == 0 {
				return nil, &ErrBadNumber{What: "count", Text: word, Hint: "insert like 1000 500 or 1000x2"}
			}
			t[currency.Nominal(nominal)] += uint(count)
		}
	}
	if len(t) == 0 {
		return nil, &ErrUsage{Usage: usageCash}
	}
	return t, nil
}

// ParsePrice reads major units of home currency, "1500", "₩1,500" and "12.50" are fine.
func ParsePrice(s string, home currency.Code) (currency.Money, error) {
	text := strings.TrimSpace(s)
	text = strings.TrimPrefix(text, home.Symbol())
	text = strings.TrimSuffix(text, string(home))
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	d, err := decimal.NewFromString(text)
	if err != nil || d.Sign() <= 0 {
		return currency.Money{}, &ErrBadNumber{What: "price", Text: s, Hint: "enter positive amount like 1500"}
	}
	if !d.Equal(d.Truncate(home.Digits())) {
		return currency.Money{}, &ErrBadNumber{What: "price", Text: s, Hint: "too many decimal places for " + string(home)}
	}
	return currency.FromMajor(d, home), nil
}

func parseInt(what, s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ErrBadNumber{What: what, Text: s, Hint: "enter whole number"}
	}
	return i, nil
}
