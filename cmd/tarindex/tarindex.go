package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldtec/tarstream/src/tarindex"
	"github.com/veldtec/tarstream/src/util"
)

func main() {
	app := &cli.App{
		Name:      "tarindex",
		Usage:     "build or list a binary index over a tar archive",
		ArgsUsage: "<archive.tar | -> [<indexfile>]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "list",
				Usage: "treat the first argument as an index file and print it",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tarindex: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("expected an archive or index file", 1)
	}
	if c.Bool("list") {
		return listIndex(c.Args().First())
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
	out := os.Stdout
	if c.NArg() > 1 && c.Args().Get(1) != "-" {
		f, err := util.CreateFile(c.Args().Get(1))
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	total, err := tarindex.WriteIndex(in, out)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "indexed %d archive bytes\n", total)
	return nil
}

func listIndex(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return tarindex.ReadIndex(f, func(e *tarindex.IndexEntry) error {
		_, err := fmt.Printf("%-8s %12d %12d %12d %s\n",
			e.FileType(), e.FirstByte, e.LastByte, e.Size, e.Path)
		return err
	})
}
