// Package agent asks Gemini for help with the budget: subcategory suggestions,
// spending patterns, and an interactive bookkeeper.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNoAnswer is returned when the model answers nothing usable.
var ErrNoAnswer = errors.New("no answer from the model")

// Generator generates content, like genai.Models.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Generator = (*genai.Models)(nil)

// NewClient returns a Gemini client. The API key is read from the environment
// by genai.
func NewClient(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("cannot create gemini client: %w", err)
	}
	return client, nil
}

// firstContent returns the content of the first candidate.
func firstContent(resp *genai.GenerateContentResponse) (*genai.Content, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoAnswer
	}
	return resp.Candidates[0].Content, nil
}

// text concatenates the text parts of the first candidate.
func text(resp *genai.GenerateContentResponse) (string, error) {
	content, err := firstContent(resp)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoAnswer
	}
	return b.String(), nil
}
