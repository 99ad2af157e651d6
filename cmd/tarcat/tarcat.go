package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/veldtec/tarstream/src/tarstream"
)

var errDone = errors.New("done")

func main() {
	app := &cli.App{
		Name:      "tarcat",
		Usage:     "write one archive member's payload to stdout",
		ArgsUsage: "<archive.tar | -> <member path>",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tarcat: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("expected <archive.tar> <member path>")
	}
	in := os.Stdin
	if c.Args().First() != "-" {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	member := c.Args().Get(1)
	d := tarstream.NewDecoder(in)
	err := d.Entries(func(h *tarstream.Header, payload io.Reader) error {
		if h.Path() != member {
			return nil
		}
		if _, err := io.Copy(os.Stdout, payload); err != nil {
			return err
		}
		return errDone
	})
	if err == errDone {
		return nil
	}
	if err == nil {
		return errors.Errorf("member %q not found", member)
	}
	return err
}
