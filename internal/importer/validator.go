package importer

import (
	"fmt"
	"strings"

	"github.com/moneyapps/ledger/internal/domain"
)

// CategoryValidator validates transaction categories against the closed
// per-type category lists.
type CategoryValidator struct {
	byType map[domain.TransactionType]map[string]string // normalized -> canonical
}

// NewCategoryValidator builds a validator over the income and expense
// category lists.
func NewCategoryValidator() *CategoryValidator {
	v := &CategoryValidator{byType: make(map[domain.TransactionType]map[string]string)}
	for _, txType := range []domain.TransactionType{domain.TransactionIncome, domain.TransactionExpense} {
		set := make(map[string]string)
		for _, name := range domain.CategoriesFor(txType) {
			set[normalizeCategory(name)] = name
		}
		set[normalizeCategory(domain.ImportReviewCategory)] = domain.ImportReviewCategory
		v.byType[txType] = set
	}
	return v
}

// Validate checks the category against the list for the transaction type
// and returns its canonical spelling.
func (v *CategoryValidator) Validate(txType domain.TransactionType, category string) (string, error) {
	set, ok := v.byType[txType]
	if !ok {
		return "", fmt.Errorf("Validate: unknown transaction type %q", txType)
	}
	canonical, ok := set[normalizeCategory(category)]
	if !ok {
		return "", fmt.Errorf("Validate: %w: invalid %s category %q, valid: %v",
			domain.ErrValidation, strings.ToLower(string(txType)), category, domain.CategoriesFor(txType))
	}
	return canonical, nil
}

// normalizeCategory normalizes a category name for comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
