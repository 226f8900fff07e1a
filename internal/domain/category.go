package domain

// Closed category lists per transaction type. The category column itself is
// free-form so imported data survives taxonomy changes; these lists constrain
// what the interactive surfaces offer and what the import validator accepts.

// ImportReviewCategory is the provisional label given to imported
// transactions awaiting review.
const ImportReviewCategory = "Temporary"

var incomeCategories = []string{
	"Salary",
	"Scholarship",
	"Gift",
	"Refund",
	"Other",
}

var expenseCategories = []string{
	"Food & Dining",
	"Shopping & Groceries",
	"Transportation",
	"Entertainment",
	"Healthcare",
	"Utilities",
	"Other",
}

// CategoriesFor returns the closed category list for a transaction type.
// The returned slice is a copy.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case TransactionIncome:
		return append([]string(nil), incomeCategories...)
	case TransactionExpense:
		return append([]string(nil), expenseCategories...)
	default:
		return nil
	}
}
