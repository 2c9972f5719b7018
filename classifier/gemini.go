package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"google.golang.org/genai"

	"varsler/models"
)

const geminiPrompt = `You categorize news items. Pick exactly one label from this list: %s.
If none of the labels applies, answer "%s".
Respond with the label only, no punctuation or explanation.

Text:
%s`

// Gemini is the remote classification tier backed by the Gemini API. The
// model is constrained to the configured label set; anything else it answers
// is treated as a failure so the caller falls through to the keyword tier.
type Gemini struct {
	client *genai.Client
	model  string
	labels []string
}

var _ Strategy = (*Gemini)(nil)

func NewGemini(ctx context.Context, apiKey string, model string, labels []string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  model,
		labels: lo.Map(labels, func(label string, _ int) string {
			return strings.ToLower(label)
		}),
	}, nil
}

func (g *Gemini) Classify(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(geminiPrompt, strings.Join(g.labels, ", "), models.CategoryUncategorized, text)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model %s", g.model)
	}

	label := strings.ToLower(strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text))
	label = strings.Trim(label, `"'.`+"`")

	if label == models.CategoryUncategorized || lo.Contains(g.labels, label) {
		return label, nil
	}

	return "", fmt.Errorf("model returned a label outside the candidate set: %q", label)
}
