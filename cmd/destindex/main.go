// Copyright 2025 The DestServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command destindex builds and inspects binary destination indexes.
//
//	destindex build -in destinations.json -out destinations.idx
//	destindex inspect destinations.idx
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/bastiangx/destserve/internal/logger"
	"github.com/bastiangx/destserve/pkg/destinations"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"
)

const Version = "0.1.0-beta"

func main() {
	app := &cli.App{
		Name:    "destindex",
		Usage:   "Build and inspect DestServe binary destination indexes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Toggle debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(c.Bool("debug"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Convert a JSON destination list into a binary index",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "in",
						Aliases:  []string{"i"},
						Usage:    "JSON destination list",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Binary index to write",
						Value:   "destinations.idx",
					},
				},
				Action: buildCommand,
			},
			{
				Name:      "inspect",
				Usage:     "Verify a binary index and print its header",
				ArgsUsage: "<file.idx>",
				Action:    inspectCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildCommand reads, cleans and writes the index.
func buildCommand(c *cli.Context) error {
	in, out := c.String("in"), c.String("out")

	records, err := destinations.ReadJSONFile(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", in, err)
	}

	prepared, stats := destinations.Prepare(records)
	if stats.Kept == 0 {
		return fmt.Errorf("no usable destinations in %s", in)
	}
	if err := destinations.WriteBinaryFile(out, prepared); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	info := logger.NewWithConfig(os.Stderr, "destindex", log.InfoLevel, false)
	info.Info("Index written", "out", out, "kept", stats.Kept,
		"invalid", stats.Invalid, "duplicates", stats.Duplicates, "normalized", stats.Normalized)
	return nil
}

func inspectCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.ShowSubcommandHelp(c)
	}
	path := c.Args().First()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	meta, err := destinations.InspectBinary(bufio.NewReader(file))
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	fmt.Fprintf(c.App.Writer, "file:     %s\n", path)
	fmt.Fprintf(c.App.Writer, "version:  %d\n", meta.Version)
	fmt.Fprintf(c.App.Writer, "records:  %d\n", meta.Count)
	fmt.Fprintf(c.App.Writer, "block:    %d bytes\n", meta.Size)
	fmt.Fprintf(c.App.Writer, "checksum: %016x (ok)\n", meta.Checksum)
	return nil
}
