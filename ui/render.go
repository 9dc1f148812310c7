package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/skip2/go-qrcode"
	"github.com/temoto/vendsim/bank"
	"github.com/temoto/vendsim/currency"
	"github.com/temoto/vendsim/engine"
	"github.com/temoto/vendsim/engine/inventory"
	"github.com/temoto/vendsim/money"
)

const receiptTimeFormat = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func RenderItems(w io.Writer, items []inventory.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "(no items)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tITEM\tSTOCK\tPRICE")
	for i, item := range items {
		stock := humanize.Comma(int64(item.Stock))
		if item.Stock == 0 {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, item.Name, stock, item.Price.Symbol())
	}
	tw.Flush()
}

func RenderCards(w io.Writer, cards []*bank.Card) {
	if len(cards) == 0 {
		fmt.Fprintln(w, "(no cards)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tCARD\tOWNER\tBALANCE")
	for i, c := range cards {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, c.MaskedNumber(), c.Account().Owner, c.Account().Balance().Symbol())
	}
	tw.Flush()
}

func RenderQuote(w io.Writer, q engine.Quote) {
	if q.Empty {
		fmt.Fprintln(w, "Cart is empty, nothing to pay.")
		return
	}
	renderLines(w, q.Lines)
	fmt.Fprintf(w, "Total: %s\n", q.Total.Symbol())
	if !q.CashAvailable {
		fmt.Fprintln(w, "Cash is not accepted right now, pay by card.")
	}
}

func renderLines(w io.Writer, lines []engine.ReceiptLine) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ITEM\tPRICE\tQTY\tAMOUNT")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.Item, l.UnitPrice.Symbol(), l.Quantity, l.Subtotal.Symbol())
	}
	tw.Flush()
}

// RenderDispensed is what falls into the tray.
func RenderDispensed(w io.Writer, r *engine.Receipt) {
	fmt.Fprintln(w, "Take your items from the tray:")
	tw := newTable(w)
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "  %s\tx%d\n", l.Item, l.Quantity)
	}
	tw.Flush()
	if r.Kind == engine.PaymentCash && !r.Change.IsZero() {
		fmt.Fprintf(w, "Change %s: %s\n", r.Change.Symbol(), FormatNominals(r.ChangeGiven, r.Change.Currency))
	}
}

func RenderReceipt(w io.Writer, r *engine.Receipt, qr bool) error {
	var b strings.Builder
	renderLines(&b, r.Lines)
	width := strings.IndexByte(b.String(), '\n')
	if width < 24 {
		width = 24
	}
	title := fmt.Sprintf(" RECEIPT #%d ", r.Seq)
	pad := width - len(title)
	if pad < 2 {
		pad = 2
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat("=", pad/2), title, strings.Repeat("=", pad-pad/2))
	fmt.Fprintf(w, "%s  %s\n", r.Time.Format(receiptTimeFormat), r.ID.String())
	io.WriteString(w, b.String())
	tw := newTable(w)
	fmt.Fprintf(tw, "Total\t%s\n", r.Total.Symbol())
	switch r.Kind {
	case engine.PaymentCard:
		fmt.Fprintf(tw, "Card\t%s\n", r.Card)
		fmt.Fprintf(tw, "Charged\t%s\n", r.Charged.Symbol())
	case engine.PaymentCash:
		fmt.Fprintf(tw, "Cash\t%s\n", r.Tendered.Symbol())
		fmt.Fprintf(tw, "Change\t%s\n", r.Change.Symbol())
	}
	tw.Flush()
	fmt.Fprintln(w, strings.Repeat("=", width))

	if qr {
		code, err := qrcode.New(receiptQRContent(r), qrcode.Low)
		if err != nil {
			return errors.Annotate(err, "receipt qr")
		}
		io.WriteString(w, code.ToSmallString(false))
	}
	return nil
}

func receiptQRContent(r *engine.Receipt) string {
	return fmt.Sprintf("vendsim:receipt?id=%s&seq=%d&total=%s&kind=%s",
		r.ID.String(), r.Seq, r.Total.Major().String()+string(r.Total.Currency), r.Kind.String())
}

func RenderJournal(w io.Writer, rs []*engine.Receipt) {
	if len(rs) == 0 {
		fmt.Fprintln(w, "(no purchases)")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SEQ\tTIME\tKIND\tITEMS\tTOTAL")
	for _, r := range rs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.Seq, r.Time.Format(receiptTimeFormat), r.Kind.String(), r.ItemCount(), r.Total.Symbol())
	}
	tw.Flush()
}

func RenderTill(w io.Writer, till *money.Till) {
	counts := till.Counts()
	tw := newTable(w)
	fmt.Fprintln(tw, "NOMINAL\tCOUNT\tCAPACITY\tACCEPT\tCHANGE")
	for _, d := range till.Denominations() {
		capacity := "-"
		if d.Capacity > 0 {
			capacity = humanize.Comma(int64(d.Capacity))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Comma(int64(d.Nominal)), humanize.Comma(int64(counts[d.Nominal])), capacity, yesNo(d.Accept), yesNo(d.Change))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", till.Total().Symbol())
}

func RenderCollect(w io.Writer, r money.CollectReport, home currency.Code) {
	fmt.Fprintf(w, "Collected: %s\n", FormatNominals(r.Collected, home))
	fmt.Fprintf(w, "Refilled: %s\n", FormatNominals(r.Refilled, home))
}

// FormatNominals "₩1,000 x1, ₩100 x3", largest first.
func FormatNominals(m map[currency.Nominal]uint, home currency.Code) string {
	ns := make([]currency.Nominal, 0, len(m))
	for n, c := range m {
		if c != 0 {
			ns = append(ns, n)
		}
	}
	if len(ns) == 0 {
		return "none"
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i] > ns[j] })
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprintf("%s x%d", currency.New(currency.Amount(n), home).Symbol(), m[n])
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
