package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "arena",
		Usage: "Deterministic multi-agent chain simulator",
		Commands: []*cli.Command{
			&RunCmd,
			&ReplayCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
