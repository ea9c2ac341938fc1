package core

// Fallback bucket for transactions whose category is absent or unknown.
const (
	OtherCategoryID    = "default-other"
	OtherCategoryName  = "Other"
	OtherCategoryIcon  = "📦"
	OtherCategoryColor = "#6b7280"
)

const (
	PaymentCash         = "cash"
	PaymentCreditCard   = "credit_card"
	PaymentDebitCard    = "debit_card"
	PaymentBankTransfer = "bank_transfer"
	PaymentUPI          = "upi"
	PaymentWallet       = "wallet"
)

// PaymentMethods lists the accepted payment method labels.
var PaymentMethods = []string{
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentBankTransfer,
	PaymentUPI,
	PaymentWallet,
}

func IsPaymentMethod(s string) bool {
	for _, m := range PaymentMethods {
		if m == s {
			return true
		}
	}
	return false
}

// DefaultCategories are shared by every user. IDs match the SQLite seed migration.
var DefaultCategories = []Category{
	{ID: "default-food-dining", Name: "Food & Dining", Icon: "🍔", Color: "#f97316", Kind: KindExpense},
	{ID: "default-transportation", Name: "Transportation", Icon: "🚗", Color: "#3b82f6", Kind: KindExpense},
	{ID: "default-shopping", Name: "Shopping", Icon: "🛍️", Color: "#ec4899", Kind: KindExpense},
	{ID: "default-entertainment", Name: "Entertainment", Icon: "🎬", Color: "#8b5cf6", Kind: KindExpense},
	{ID: "default-bills-utilities", Name: "Bills & Utilities", Icon: "💡", Color: "#ef4444", Kind: KindExpense},
	{ID: "default-health", Name: "Health", Icon: "🏥", Color: "#10b981", Kind: KindExpense},
	{ID: "default-education", Name: "Education", Icon: "📚", Color: "#06b6d4", Kind: KindExpense},
	{ID: "default-groceries", Name: "Groceries", Icon: "🛒", Color: "#84cc16", Kind: KindExpense},
	{ID: "default-travel", Name: "Travel", Icon: "✈️", Color: "#f59e0b", Kind: KindExpense},
	{ID: OtherCategoryID, Name: OtherCategoryName, Icon: OtherCategoryIcon, Color: OtherCategoryColor, Kind: KindExpense},
	{ID: "default-salary", Name: "Salary", Icon: "💰", Color: "#22c55e", Kind: KindIncome},
	{ID: "default-freelance", Name: "Freelance", Icon: "💼", Color: "#14b8a6", Kind: KindIncome},
	{ID: "default-investments", Name: "Investments", Icon: "📈", Color: "#6366f1", Kind: KindIncome},
	{ID: "default-other-income", Name: "Other Income", Icon: "💵", Color: "#a3a3a3", Kind: KindIncome},
}

// CategoryIndex maps category IDs to categories.
type CategoryIndex map[string]Category

func IndexCategories(cats []Category) CategoryIndex {
	idx := make(CategoryIndex, len(cats))
	for _, c := range cats {
		idx[c.ID] = c
	}
	return idx
}

// Resolve returns the category for id. Absent or unknown IDs fall back to the
// Other category, taken from the index when it holds one so both land in the
// same bucket.
func (idx CategoryIndex) Resolve(id string) (Category, bool) {
	if id != "" {
		if c, ok := idx[id]; ok {
			return c, true
		}
	}
	if c, ok := idx[OtherCategoryID]; ok {
		return c, false
	}
	return Category{ID: OtherCategoryID, Name: OtherCategoryName, Icon: OtherCategoryIcon, Color: OtherCategoryColor, Kind: KindExpense}, false
}
