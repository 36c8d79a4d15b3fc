package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// maxCalls bounds the function calls answered for one question.
const maxCalls = 8

// Agent is an interactive chat with the bookkeeper.
type Agent struct {
	w       io.Writer
	r       *bufio.Reader
	gen     Generator
	model   string
	config  *genai.GenerateContentConfig
	library Library
	history []*genai.Content

	// Render formats answers before they are printed.
	Render func(string) string
}

// New returns an agent answering with tools on gen, reading questions from r
// and writing answers to w.
func New(w io.Writer, r io.Reader, gen Generator, model string, tools ...Function) *Agent {
	if model == "" {
		model = DefaultModel
	}
	return &Agent{
		w:     w,
		r:     bufio.NewReader(r),
		gen:   gen,
		model: model,
		config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{{FunctionDeclarations: NewDeclaration(tools)}},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a bookkeeper in charge of the user's personal budget.
			Use the Tools to read the user's accounts, expenses, incomes and transfers.
			Pardon the user's approximate language and figure out what they meant.
			Answer in markdown, quote amounts with their currency.`}}},
		},
		library: NewLibrary(tools),
		Render:  func(s string) string { return s },
	}
}

// Ask sends a question and answers the model's function calls until it
// replies with text. The conversation is kept for the next question.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	a.history = append(a.history, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{{Text: question}}})
	for range maxCalls {
		resp, err := a.gen.GenerateContent(ctx, a.model, a.history, a.config)
		if err != nil {
			return "", err
		}
		content, err := firstContent(resp)
		if err != nil {
			return "", err
		}
		content.Role = genai.RoleModel
		a.history = append(a.history, content)

		var calls []*genai.Part
		for _, p := range content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, &genai.Part{FunctionResponse: a.library(ctx, p.FunctionCall)})
			}
		}
		if len(calls) == 0 {
			return text(resp)
		}
		a.history = append(a.history, &genai.Content{Role: genai.RoleUser, Parts: calls})
	}
	return "", fmt.Errorf("no answer after %d function calls", maxCalls)
}

const prompt = "assist> "

// Run is the REPL. prompts are asked first, then questions are read until
// "bye" or the end of input.
func (a *Agent) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(a.w, "Welcome to the budget assistant. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err == io.EOF && strings.TrimSpace(input) == "" {
				return nil
			}
			if err != nil && err != io.EOF {
				return err
			}
		}
		input = strings.TrimSpace(input)
		if input == "bye" {
			return nil
		}
		if input == "" {
			continue
		}
		answer, err := a.Ask(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, a.Render(answer))
	}
}
