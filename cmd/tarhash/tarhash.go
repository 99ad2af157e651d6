package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldtec/tarstream/src/splitting"
	"github.com/veldtec/tarstream/src/util"
)

func main() {
	app := &cli.App{
		Name:      "tarhash",
		Usage:     "write sha256 digests of all regular archive members",
		ArgsUsage: "<input.tar> [<output.hashfile | ->]",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tarhash: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("expected <input.tar>", 1)
	}
	var out io.Writer = os.Stdout
	if c.NArg() > 1 && c.Args().Get(1) != "-" {
		f, err := util.CreateFile(c.Args().Get(1))
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return splitting.ReadSHA256(c.Args().First(), out)
}
