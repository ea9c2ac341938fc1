// Package export serializes ledger transactions to flat files.
package export

import (
	"bytes"
	"encoding/csv"
	"strings"

	"fintrack/internal/core"
)

// Header is the first row of every export.
var Header = []string{"Date", "Category", "Description", "Amount", "Payment Method"}

// Rows renders one record per transaction, without the header. Unknown
// categories are written as "Other" and amounts with two decimals.
func Rows(transactions []core.Transaction, categories []core.Category) [][]string {
	idx := core.IndexCategories(categories)
	rows := make([][]string, 0, len(transactions))
	for _, t := range transactions {
		cat, _ := idx.Resolve(t.CategoryID)
		rows = append(rows, []string{
			t.Date.String(),
			cat.Name,
			t.Description,
			t.Amount.String(),
			t.PaymentMethod,
		})
	}
	return rows
}

// ToCSV renders the header and rows separated by "\n" with no trailing
// newline. Fields holding commas, quotes or line breaks are quoted.
func ToCSV(transactions []core.Transaction, categories []core.Category) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return "", err
	}
	if err := w.WriteAll(Rows(transactions, categories)); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
