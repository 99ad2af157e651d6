package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldtec/tarstream/src/splitting"
)

func main() {
	app := &cli.App{
		Name:      "tarsplit",
		Usage:     "split a tar archive in place at the entry boundary past its middle",
		ArgsUsage: "<input.tar>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected <input.tar>", 1)
			}
			return splitting.SplitTarMiddle(c.Args().First())
		},
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tarsplit: %s\n", err)
		os.Exit(1)
	}
}
