package main

import (
	"fmt"
	"os"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/gdamore/tcell"
	"github.com/marburg-hpc/qwatch/qwatch"
	"github.com/marburg-hpc/qwatch/torque"
)

const usage = `
Watch the PBS queue status

Usage:
  qwatch [options]

Options:
  -n, --interval=<seconds>  Seconds between automatic refreshes [default: 2]
  -c, --command=<path>      Path of the qstat executable [default: qstat]
  -h, --help                Show this help
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		return err
	}

	interval, err := opts.Int("--interval")
	if err != nil {
		return err
	}

	command, err := opts.String("--command")
	if err != nil {
		return err
	}

	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}

	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()

	watch := qwatch.NewWatcher(torque.NewClient(command))

	app := qwatch.NewApp(watch, scr, qwatch.Config{
		Interval: time.Duration(interval) * time.Second,
		Username: qwatch.CurrentUser(),
	})

	return app.Start()
}
