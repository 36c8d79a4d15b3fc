package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/budget"
	"github.com/etnz/budget/agent"
	"github.com/google/subcommands"
)

// newGenerator connects to the model.
var newGenerator = func(ctx context.Context) (agent.Generator, error) {
	client, err := agent.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

type suggestCmd struct {
	category string
	desc     string
}

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "suggest subcategories for an expense" }
func (*suggestCmd) Usage() string {
	return `pft suggest -c <category> -desc <description>

  Asks Gemini for subcategory names that fit an expense of the category.
  Existing subcategories are given as examples and are not suggested again.
  The API key is read from GOOGLE_API_KEY.
`
}

func (c *suggestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "", "Expense category id or name.")
	f.StringVar(&c.desc, "desc", "", "Description of the expense.")
}

func (c *suggestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.desc == "" && f.NArg() > 0 {
		c.desc = strings.Join(f.Args(), " ")
	}
	return withSession(ctx, func(s *session) error {
		cat, err := resolveCategory(s.ledger.Snapshot(), budget.Outgoing, c.category)
		if err != nil {
			return err
		}
		gen, err := newGenerator(ctx)
		if err != nil {
			return err
		}
		req := agent.SubcategoryRequest{Category: cat.Name, Description: c.desc}
		for _, sub := range cat.Subcategories {
			req.Examples = append(req.Examples, sub.Name)
		}
		names, err := agent.NewAdvisor(gen, *model).SuggestSubcategories(ctx, req)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return nil
	})
}

type patternsCmd struct{}

func (*patternsCmd) Name() string     { return "patterns" }
func (*patternsCmd) Synopsis() string { return "summarize spending patterns" }
func (*patternsCmd) Usage() string {
	return `pft patterns

  Sends the expenses, with category and payment method names, to Gemini and
  prints its summary of the spending patterns.
`
}
func (*patternsCmd) SetFlags(f *flag.FlagSet) {}

func (*patternsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withSession(ctx, func(s *session) error {
		expenses := agent.ExpenseSummaries(s.ledger.Snapshot())
		gen, err := newGenerator(ctx)
		if err != nil {
			return err
		}
		patterns, err := agent.NewAdvisor(gen, *model).DiscoverPatterns(ctx, expenses)
		if err != nil {
			return err
		}
		printMarkdown(patterns + "\n")
		return nil
	})
}

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the bookkeeper assistant" }
func (*assistCmd) Usage() string {
	return `pft assist [<question>]

  Starts an interactive session with an assistant that can read the accounts,
  the journal, the dashboard and the breakdowns. Type 'bye' to exit.
`
}
func (*assistCmd) SetFlags(f *flag.FlagSet) {}

func (*assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	return withSession(ctx, func(s *session) error {
		gen, err := newGenerator(ctx)
		if err != nil {
			return err
		}
		a := agent.New(stdout, os.Stdin, gen, *model, agent.BookkeeperTools(s.ledger.Snapshot)...)
		if !*plain {
			a.Render = renderMarkdown
		}
		if err := a.Run(ctx, prompts...); err != nil {
			return fmt.Errorf("assistant failed: %w", err)
		}
		return nil
	})
}
