// Interactive vending machine shell.
package vend

import (
	"context"
	"os"

	"github.com/c-bata/go-prompt"
	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/vendsim/cmd/vendsim/subcmd"
	"github.com/temoto/vendsim/helpers/cli"
	"github.com/temoto/vendsim/state"
	"github.com/temoto/vendsim/ui"
)

const defaultPrompt = "vend> "

var Mod = subcmd.Mod{Name: "vend", About: "interactive vending shell", Main: Main}

func Main(ctx context.Context, config *state.Config) error {
	g := state.GetGlobal(ctx)
	g.MustInit(ctx, config)
	g.Log.Debugf("config=%+v", g.Config)

	opt := ui.Options{
		ReceiptQR:  config.UI.ReceiptQR,
		AuthEnable: config.UI.Service.Auth.Enable,
		Passwords:  config.UI.Service.Auth.Passwords,
	}
	shell := ui.NewShell(g.Log, g.Engine, os.Stdout, opt, g.Alive.Stop)
	prefix := config.UI.Prompt
	if prefix == "" {
		prefix = defaultPrompt
	}

	subcmd.SdNotify(daemon.SdNotifyReady)
	g.Log.Infof("vendsim ready home=%s items=%d cards=%d till=%s",
		g.Engine.Home(), g.Inventory.Len(), len(g.Bank.Cards()), g.Till.Total().String())

	shell.Exec("list")
	err := cli.MainLoop(g.Alive, "vendsim", shell.Exec, shell.Complete, prompt.OptionPrefix(prefix))
	g.Alive.Wait()
	g.Log.Infof("vendsim stop, settled=%d merchant=%s", len(g.Engine.Journal()), g.Engine.Merchant().Balance().String())
	return errors.Annotate(err, "vend")
}
