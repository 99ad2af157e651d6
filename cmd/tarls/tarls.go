package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/docker/go-units"
	"github.com/urfave/cli/v2"

	"github.com/veldtec/tarstream/src/tarstream"
)

func main() {
	app := &cli.App{
		Name:      "tarls",
		Usage:     "list the entries of a ustar archive",
		ArgsUsage: "<archive.tar | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "human",
				Aliases: []string{"H"},
				Usage:   "print sizes in human readable units",
			},
			&cli.BoolFlag{
				Name:  "offsets",
				Usage: "print header and payload byte offsets",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tarls: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	in := os.Stdin
	if c.NArg() > 0 && c.Args().First() != "-" {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	d := tarstream.NewDecoder(in)
	return d.Entries(func(h *tarstream.Header, payload io.Reader) error {
		size := strconv.FormatInt(h.Size, 10)
		if c.Bool("human") {
			size = units.BytesSize(float64(h.Size))
		}
		if c.Bool("offsets") {
			_, err := fmt.Printf("%-8s %10s %12d %12d %s\n",
				h.FileType(), size, h.Offset, h.PayloadOffset, h.Path())
			return err
		}
		_, err := fmt.Printf("%-8s %10s %s\n", h.FileType(), size, h.Path())
		return err
	})
}
