package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/urfave/cli/v3"

	"github.com/arloliu/bstruct"
	"github.com/arloliu/bstruct/archive"
	"github.com/arloliu/bstruct/format"
	"github.com/arloliu/bstruct/internal/logging"
	"github.com/arloliu/bstruct/store"
)

func (a *app) indexCmd() *cli.Command {
	var workers int

	return &cli.Command{
		Name:      "index",
		Usage:     "Verify every slot of a top-level index array",
		ArgsUsage: "<file> <array>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent read sessions (default from config)", Destination: &workers},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file, err := path(cmd, 0, "file")
			if err != nil {
				return err
			}
			array, err := path(cmd, 1, "array")
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Parallel.Workers
			}

			log := logging.WithCommand(a.logger, "index")
			var slots atomic.Int64
			err = bstruct.ForEachIndexed(ctx, file, array, workers,
				func(context.Context, *store.Reader, int) error {
					slots.Add(1)
					return nil
				},
				a.cfg.StoreOptions(),
			)
			if err != nil {
				return err
			}

			log.Debug().Str("file", file).Int("workers", workers).Msg("index verified")
			fmt.Printf("%s: %d slots ok\n", array, slots.Load())

			return nil
		},
	}
}

func (a *app) packCmd() *cli.Command {
	var codec string

	return &cli.Command{
		Name:      "pack",
		Usage:     "Compress a closed store file into an archive",
		ArgsUsage: "<file> <archive>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "codec", Usage: "none, zstd, s2 or lz4 (default from config)", Destination: &codec},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src, err := path(cmd, 0, "file")
			if err != nil {
				return err
			}
			dst, err := path(cmd, 1, "archive")
			if err != nil {
				return err
			}

			ct := a.cfg.Compression()
			if codec != "" {
				var ok bool
				if ct, ok = format.ParseCompression(codec); !ok {
					return fmt.Errorf("pack: unknown codec %q", codec)
				}
			}

			stats, err := archive.PackFile(src, dst, ct)
			if err != nil {
				return err
			}

			log := logging.WithCommand(a.logger, "pack")
			log.Info().
				Str("src", src).
				Str("dst", dst).
				Stringer("codec", stats.Codec).
				Int64("raw", stats.RawSize).
				Int64("packed", stats.PackedSize).
				Float64("ratio", stats.Ratio()).
				Msg("archive written")

			return nil
		},
	}
}

func (a *app) unpackCmd() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "Restore a store file from an archive",
		ArgsUsage: "<archive> <file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src, err := path(cmd, 0, "archive")
			if err != nil {
				return err
			}
			dst, err := path(cmd, 1, "file")
			if err != nil {
				return err
			}

			stats, err := archive.UnpackFile(src, dst)
			if err != nil {
				return err
			}

			log := logging.WithCommand(a.logger, "unpack")
			log.Info().
				Str("src", src).
				Str("dst", dst).
				Stringer("codec", stats.Codec).
				Int64("raw", stats.RawSize).
				Msg("store restored")

			return nil
		},
	}
}
