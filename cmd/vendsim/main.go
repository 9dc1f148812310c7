package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/vendsim/cmd/vendsim/config"
	"github.com/temoto/vendsim/cmd/vendsim/subcmd"
	"github.com/temoto/vendsim/cmd/vendsim/vend"
	"github.com/temoto/vendsim/log2"
	"github.com/temoto/vendsim/state"
)

var modules = []subcmd.Mod{
	vend.Mod,
	config.Mod,
}

func main() {
	log := log2.NewStderr(log2.LDebug)
	log.SetFlags(log2.LInteractiveFlags)

	flagset := flag.NewFlagSet("vendsim", flag.ExitOnError)
	flagConfig := flagset.String("config", "vendsim.hcl", "config file, includes are relative to it")
	flagset.Usage = func() {
		fmt.Fprintf(flagset.Output(), "usage: vendsim [-config FILE] [COMMAND]\ncommands (default vend):\n%s", subcmd.Usage(modules))
		flagset.PrintDefaults()
	}
	_ = flagset.Parse(os.Args[1:])

	command := flagset.Arg(0)
	if command == "" {
		command = vend.Mod.Name
	}
	mod, err := subcmd.Parse(command, modules)
	if err != nil {
		flagset.Usage()
		log.Fatal(err)
	}

	if subcmd.SdNotify("start") {
		// under systemd, journal adds timestamp
		log.SetFlags(log2.LServiceFlags)
	}

	cfg := state.MustReadConfig(log, state.NewOsFullReader("."), *flagConfig)
	level, err := log2.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(errors.Annotate(err, "config log_level"))
	}
	log.SetLevel(level)

	ctx, _ := state.NewContext(log)
	if err := mod.Main(ctx, cfg); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}
