// Command pft manages a personal budget: expenses, incomes, transfers between
// accounts, and the reports computed from them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/etnz/budget/cmd"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error loading .env:", err)
	}

	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// Answers shell completion requests and exits, does nothing otherwise.
	cmd.Completion(commander, flag.CommandLine).Complete(name)

	if err := cmd.SetFlagsFromEnv(flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	flag.Parse()
	cmd.SetupLogging()

	if flag.NArg() > 0 && !registered(commander, flag.Arg(0)) {
		if found, code := cmd.RunExtension(flag.Arg(0), flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(c *subcommands.Commander, name string) (found bool) {
	c.VisitCommands(func(_ *subcommands.CommandGroup, command subcommands.Command) {
		found = found || command.Name() == name
	})
	return found
}
