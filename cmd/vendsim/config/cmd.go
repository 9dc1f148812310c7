// Validate config and print resulting machine.
package config

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/temoto/vendsim/cmd/vendsim/subcmd"
	"github.com/temoto/vendsim/state"
	"github.com/temoto/vendsim/ui"
)

var Mod = subcmd.Mod{Name: "config", About: "validate config and print machine", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	if err := g.Init(ctx, config); err != nil {
		return err
	}
	Print(os.Stdout, g)
	return nil
}

func Print(w io.Writer, g *state.Global) {
	fmt.Fprintf(w, "home currency: %s\n", g.Engine.Home())
	fmt.Fprintf(w, "exchange rates per 1 %s (rounding %s):\n", g.Rates.Base(), g.Rates.Rounding().String())
	for _, code := range g.Rates.Codes() {
		r, _ := g.Rates.Rate(code)
		fmt.Fprintf(w, "  %s %s\n", code, r.String())
	}
	fmt.Fprintln(w, "\ninventory:")
	ui.RenderItems(w, g.Inventory.List())
	fmt.Fprintln(w, "\ntill:")
	ui.RenderTill(w, g.Till)
	fmt.Fprintln(w, "\ncards:")
	ui.RenderCards(w, g.Bank.Cards())
	fmt.Fprintf(w, "\nmerchant: %s\n", g.Engine.Merchant().String())
}
