package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/budget"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// Advisor answers one-shot questions about expenses.
type Advisor struct {
	gen   Generator
	model string
}

// NewAdvisor returns an Advisor using model on gen. An empty model means
// DefaultModel.
func NewAdvisor(gen Generator, model string) *Advisor {
	if model == "" {
		model = DefaultModel
	}
	return &Advisor{gen: gen, model: model}
}

// SubcategoryRequest describes the expense to classify.
type SubcategoryRequest struct {
	Category    string
	Description string
	// Examples are the existing subcategory names of the category.
	Examples []string
}

var subcategoriesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"subcategories": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Suggested subcategory names for the expense.",
		},
	},
	Required: []string{"subcategories"},
}

// SuggestSubcategories asks for subcategory names for an expense. Names
// already in the examples, blank or repeated names are left out.
func (a *Advisor) SuggestSubcategories(ctx context.Context, req SubcategoryRequest) ([]string, error) {
	if strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("a category and a description are required: %w", budget.ErrInvalid)
	}
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Category: %s\nDescription: %s\n", req.Category, req.Description)
	if len(req.Examples) > 0 {
		prompt.WriteString("\nHere are some example subcategories for this category:\n")
		for _, e := range req.Examples {
			fmt.Fprintf(&prompt, "- %s\n", e)
		}
	}
	prompt.WriteString("\nSuggest a list of subcategories for this expense.")

	answer, err := a.generate(ctx, `You are an expert in personal finance and expense categorization.
The user provides an expense category and a description of the expense.
Suggest a list of subcategories that the expense could belong to.`, prompt.String(), subcategoriesSchema)
	if err != nil {
		return nil, fmt.Errorf("cannot suggest subcategories: %w", err)
	}
	names, err := extractStrings(answer, "$.subcategories[*]")
	if err != nil {
		return nil, fmt.Errorf("cannot suggest subcategories: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range req.Examples {
		seen[strings.ToLower(strings.TrimSpace(e))] = true
	}
	result := []string{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, n)
	}
	return result, nil
}

// ExpenseSummary is an expense with its references resolved to names.
type ExpenseSummary struct {
	Date          budget.Date     `json:"date"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory"`
	PaymentMethod string          `json:"paymentMethod"`
	Amount        decimal.Decimal `json:"amount"`
}

// ExpenseSummaries resolves the expenses of s.
func ExpenseSummaries(s budget.Snapshot) []ExpenseSummary {
	result := make([]ExpenseSummary, 0, len(s.Expenses))
	for _, e := range s.Expenses {
		result = append(result, ExpenseSummary{
			Date:          e.Date,
			Category:      s.CategoryName(e.CategoryID),
			Subcategory:   s.SubcategoryName(e.CategoryID, e.SubcategoryID),
			PaymentMethod: s.PaymentMethodName(e.PaymentMethodID),
			Amount:        e.Amount,
		})
	}
	return result
}

var patternsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"patterns": {
			Type:        genai.TypeString,
			Description: "A summary of discovered spending patterns in the user expenses.",
		},
	},
	Required: []string{"patterns"},
}

// DiscoverPatterns asks for a summary of the spending patterns in expenses.
func (a *Advisor) DiscoverPatterns(ctx context.Context, expenses []ExpenseSummary) (string, error) {
	if len(expenses) == 0 {
		return "", fmt.Errorf("no expenses to analyze: %w", budget.ErrInvalid)
	}
	var data bytes.Buffer
	enc := json.NewEncoder(&data)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(expenses); err != nil {
		return "", err
	}
	answer, err := a.generate(ctx, `You are a personal finance expert.
Analyze the expenses and identify any spending patterns.
Provide a concise summary of the identified spending patterns.`, "Expenses: "+data.String(), patternsSchema)
	if err != nil {
		return "", fmt.Errorf("cannot discover patterns: %w", err)
	}
	patterns, err := extractString(answer, "$.patterns")
	if err != nil {
		return "", fmt.Errorf("cannot discover patterns: %w", err)
	}
	return patterns, nil
}

func (a *Advisor) generate(ctx context.Context, instruction, prompt string, schema *genai.Schema) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}}}
	resp, err := a.gen.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		return "", err
	}
	return text(resp)
}
