package importer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/moneyapps/ledger/internal/domain"
)

const suggestModelName = "gemini-2.5-flash"

// Suggester proposes a category for an imported transaction from its
// description, using Gemini. Suggestions are advisory; the result is
// validated against the closed category lists and falls back to the
// review category when the model answers outside them.
type Suggester struct {
	client    *genai.Client
	validator *CategoryValidator
}

func NewSuggester(ctx context.Context) (*Suggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewSuggester: create genai client: %w", err)
	}
	return &Suggester{client: client, validator: NewCategoryValidator()}, nil
}

func buildSuggestPrompt(txType domain.TransactionType, description string) string {
	var b strings.Builder
	b.WriteString("You are a transaction categorizer for a personal finance ledger.\n\n")
	fmt.Fprintf(&b, "Classify this %s transaction into EXACTLY one of the following categories:\n\n", strings.ToLower(string(txType)))
	for _, name := range domain.CategoriesFor(txType) {
		b.WriteString("  - " + name + "\n")
	}
	b.WriteString("\nRules:\n")
	b.WriteString("1. Respond with the category name ONLY, spelled exactly as shown above.\n")
	b.WriteString("2. No explanation, no punctuation, no Markdown.\n")
	b.WriteString("3. If unsure, respond with \"Other\".\n\n")
	fmt.Fprintf(&b, "Transaction description: %q\n", description)
	return b.String()
}

// Suggest returns a category for the given transaction description. The
// returned name is always a member of the closed list for the type.
func (s *Suggester) Suggest(ctx context.Context, txType domain.TransactionType, description string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildSuggestPrompt(txType, description)},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, suggestModelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Suggest: generate content: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return "", fmt.Errorf("Suggest: empty response from model")
	}

	canonical, err := s.validator.Validate(txType, raw)
	if err != nil {
		// Model answered off-list; leave the transaction for manual review.
		return domain.ImportReviewCategory, nil
	}
	return canonical, nil
}
