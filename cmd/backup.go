package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/budget"
	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write every collection as JSON lines" }
func (*exportCmd) Usage() string {
	return `pft export [-o <file>]

  Writes all collections, one JSON line per collection, to stdout or to a file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *session) (err error) {
		w := stdout
		if c.output != "" {
			file, err := os.Create(c.output)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := file.Close(); err == nil {
					err = cerr
				}
			}()
			w = file
		}
		return budget.EncodeSnapshot(w, s.ledger.Snapshot())
	})
}

type importCmd struct {
	input string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace collections with an export" }
func (*importCmd) Usage() string {
	return `pft import [-i <file>]

  Reads JSON lines written by export, from stdin or a file, and replaces the
  collections present in it. Collections absent from the input are kept.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Input file. Defaults to stdin.")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r io.Reader = os.Stdin
	if c.input != "" {
		file, err := os.Open(c.input)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}
	snap, err := budget.DecodeSnapshot(r)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return withSession(ctx, func(s *session) error {
		merged := snap.Merge(s.ledger.Snapshot())
		if err := s.ledger.Restore(merged); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported, now %d expenses, %d incomes and %d transfers\n", len(merged.Expenses), len(merged.Incomes), len(merged.Transfers))
		return nil
	})
}
