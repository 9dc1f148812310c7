package cli

import (
	"bufio"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/alive/v2"
)

// MainLoop runs exec for every input line until stdin ends or a is stopped.
// Terminal gets go-prompt with completion, pipe is read line by line.
// Signal stops a and exits the process, blocked terminal read cannot be interrupted.
func MainLoop(a *alive.Alive, tag string, exec func(line string), complete func(d prompt.Document) []prompt.Suggest, opts ...prompt.Option) error {
	signalCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer func() {
		signal.Stop(signalCh)
		close(done)
		a.Stop()
	}()
	go func() {
		select {
		case s := <-signalCh:
			log.Printf("%s signal=%v", tag, s)
			a.Stop()
			os.Exit(1)
		case <-done:
		}
	}()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		opts = append(opts,
			prompt.OptionTitle(tag),
			prompt.OptionSetExitCheckerOnInput(func(string, bool) bool { return !a.IsRunning() }),
		)
		prompt.New(exec, complete, opts...).Run()
		return nil
	}
	return ReadLoop(a, os.Stdin, exec)
}

// ReadLoop feeds trimmed lines from r to exec.
func ReadLoop(a *alive.Alive, r io.Reader, exec func(line string)) error {
	scanner := bufio.NewScanner(r)
	for a.IsRunning() && scanner.Scan() {
		exec(strings.TrimSpace(scanner.Text()))
	}
	return errors.Annotate(scanner.Err(), "read input")
}
