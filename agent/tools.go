package agent

import (
	"context"
	"fmt"

	"github.com/etnz/budget"
	"github.com/etnz/budget/docs"
	"github.com/etnz/budget/renderer"
	"google.golang.org/genai"
)

// BookkeeperTools are the functions reading the budget returned by snapshot.
func BookkeeperTools(snapshot func() budget.Snapshot) []Function {
	rangeSchema := &genai.Schema{
		Type:        genai.TypeString,
		Description: "An optional period FROM..TO, either bound can be omitted. Dates use a flexible format:\n\n" + dateHelp(),
	}
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Dashboard",
				Description: "Dashboard returns the balances of the user (cash, bank, credit card due, net worth), the recent expenses and the expenses by category, as markdown.",
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				return renderer.DashboardMarkdown(snapshot(), 10), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Accounts",
				Description: "Accounts lists the accounts of the user with their type and current balance, as markdown.",
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				return renderer.AccountsMarkdown(snapshot()), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Journal",
				Description: "Journal lists every expense, income and transfer in chronological order with the running total balance, as markdown.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"range": rangeSchema},
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				r, err := rangeArg(args)
				if err != nil {
					return "", err
				}
				return renderer.JournalMarkdown(snapshot(), r), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Breakdown",
				Description: "Breakdown totals the expenses, or the incomes, per category and subcategory, as markdown.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"direction": {Type: genai.TypeString, Enum: []string{string(budget.Outgoing), string(budget.Incoming)}},
						"range":     rangeSchema,
					},
					Required: []string{"direction"},
				},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				s, _ := args["direction"].(string)
				dir, err := budget.ParseDirection(s)
				if err != nil {
					return "", err
				}
				r, err := rangeArg(args)
				if err != nil {
					return "", err
				}
				return renderer.BreakdownMarkdown(snapshot().Breakdown(dir, r)), nil
			},
		},
	}
}

func rangeArg(args map[string]any) (budget.Range, error) {
	v, ok := args["range"]
	if !ok {
		return budget.Range{}, nil
	}
	s, ok := v.(string)
	if !ok {
		return budget.Range{}, fmt.Errorf("argument 'range' is not a string as expected but %T", v)
	}
	r, err := budget.ParseRange(s)
	if err != nil {
		return budget.Range{}, fmt.Errorf("argument 'range' must be a valid range got %q. Below is the doc about the date format\n\n%s", s, dateHelp())
	}
	return r, nil
}

func dateHelp() string {
	help, err := docs.GetTopic("dates")
	if err != nil {
		return "YYYY-MM-DD"
	}
	return help
}
