package main

import (
	"context"
	"fmt"
	"os"

	"github.com/angrypie/sipclean/tasks"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli"
)

func main() {
	log.SetLevel(log.WarnLevel)

	err := newApp().Run(os.Args)
	if err != nil {
		log.Error("clean failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sipclean"
	app.Usage = "remove generated files from a SIP wrapper directory"
	app.HideVersion = true

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "dir, C", Value: ".", Usage: "directory to clean"},
		cli.StringFlag{Name: "config", Usage: "config file (default: <dir>/sipclean.yaml)"},
		cli.BoolFlag{Name: "dry-run, n", Usage: "print files that would be removed"},
		cli.BoolFlag{Name: "keep-going, k", Usage: "continue after a failed removal"},
		cli.BoolFlag{Name: "no-make", Usage: "do not run the clean command"},
		cli.BoolFlag{Name: "verbose", Usage: "log every step and print removed files"},
	}

	app.Action = func(c *cli.Context) error {
		if c.Bool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		dir := c.String("dir")

		cleaner := tasks.NewCleaner(nil)
		config, err := tasks.LoadConfig(cleaner.Fs, dir, c.String("config"))
		if err != nil {
			return err
		}
		cleaner.Config = config
		cleaner.DryRun = c.Bool("dry-run")
		cleaner.KeepGoing = c.Bool("keep-going")
		cleaner.SkipPreClean = c.Bool("no-make")

		result, err := cleaner.Clean(context.Background(), dir)
		if err != nil {
			return err
		}

		if c.Bool("verbose") || cleaner.DryRun {
			for _, name := range result.Removed {
				fmt.Fprintln(c.App.Writer, name)
			}
		}
		return nil
	}

	return app
}
