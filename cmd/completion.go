package cmd

import (
	"flag"

	"github.com/etnz/budget/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// typeValues are the values of -type per command.
var typeValues = map[string]predict.Set{
	"add-category":       {"expense", "income"},
	"add-subcategory":    {"expense", "income"},
	"categories":         {"expense", "income"},
	"breakdown":          {"expense", "income"},
	"add-account":        {"cash", "bank", "credit-card"},
	"add-payment-method": {"cash", "debit-card", "credit-card"},
}

// Completion describes the subcommands of c, and their flags, for shell
// completion. global holds the flags accepted before the subcommand.
func Completion(c *subcommands.Commander, global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictors("", global),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: predictors(cmd.Name(), fs)}
		if cmd.Name() == "topic" {
			if topics, err := docs.GetAllTopics(); err == nil {
				sub.Args = predict.Set(topics)
			}
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func predictors(command string, fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case isBool(f):
			flags[f.Name] = predict.Nothing
		case f.Name == "type" && typeValues[command] != nil:
			flags[f.Name] = typeValues[command]
		case f.Name == "data" || f.Name == "o" || f.Name == "i":
			flags[f.Name] = predict.Files("*")
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
