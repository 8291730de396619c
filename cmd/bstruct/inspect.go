package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/arloliu/bstruct/endian"
	"github.com/arloliu/bstruct/store"
)

func (a *app) open(file string) (*store.Reader, error) {
	return store.Open(file, a.cfg.StoreOptions(), store.WithLogger(a.logger))
}

func (a *app) dumpCmd() *cli.Command {
	var indent bool

	return &cli.Command{
		Name:      "dump",
		Usage:     "Print a store file as JSON",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "indent", Usage: "indent the JSON output", Destination: &indent},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file, err := path(cmd, 0, "file")
			if err != nil {
				return err
			}

			r, err := a.open(file)
			if err != nil {
				return err
			}
			defer r.Close()

			obj, err := r.Decode()
			if err != nil {
				return err
			}

			var out []byte
			if indent {
				out, err = json.MarshalIndent(obj, "", "  ")
			} else {
				out, err = json.Marshal(obj)
			}
			if err != nil {
				return fmt.Errorf("encode %s: %w", file, err)
			}

			_, err = fmt.Fprintln(os.Stdout, string(out))

			return err
		},
	}
}

func (a *app) walkCmd() *cli.Command {
	return &cli.Command{
		Name:      "walk",
		Usage:     "List every token of a store file in order",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file, err := path(cmd, 0, "file")
			if err != nil {
				return err
			}

			r, err := a.open(file)
			if err != nil {
				return err
			}
			defer r.Close()

			return r.Walk(func(ev store.Event) error {
				line := strings.Repeat("  ", ev.Depth) + ev.Token.String()
				if ev.Name != "" {
					line += " " + ev.Name
				}
				switch {
				case ev.Token.IsArray():
					line += fmt.Sprintf(" [%d]", ev.Size)
				case ev.Value != nil:
					line += fmt.Sprintf(" = %v", ev.Value)
				}
				_, err := fmt.Fprintln(os.Stdout, line)

				return err
			})
		},
	}
}

func (a *app) infoCmd() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show header and name table summary",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file, err := path(cmd, 0, "file")
			if err != nil {
				return err
			}

			st, err := os.Stat(file)
			if err != nil {
				return err
			}

			r, err := a.open(file)
			if err != nil {
				return err
			}
			defer r.Close()

			h := r.Header()
			fmt.Printf("file:        %s\n", file)
			fmt.Printf("size:        %d bytes\n", st.Size())
			fmt.Printf("version:     %d\n", h.Version)
			fmt.Printf("byte order:  %s\n", endian.Name(h.Engine))
			fmt.Printf("name table:  %d names at offset %d\n", len(r.Names()), h.NameTableOffset)
			fmt.Printf("fingerprint: %016x\n", r.Fingerprint())

			return nil
		},
	}
}

func (a *app) namesCmd() *cli.Command {
	return &cli.Command{
		Name:      "names",
		Usage:     "List the name table in id order",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file, err := path(cmd, 0, "file")
			if err != nil {
				return err
			}

			r, err := a.open(file)
			if err != nil {
				return err
			}
			defer r.Close()

			for _, e := range r.Names() {
				fmt.Printf("%5d  %s\n", e.ID, e.Name)
			}

			return nil
		},
	}
}
