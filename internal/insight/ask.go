package insight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const noSnapshotAnswer = "I don't have enough data to answer that. Please generate insights first."

var dailyLimitFactor = decimal.RequireFromString("0.8")

// Ask answers a free-text question from a previously generated snapshot.
// Keywords are matched case-insensitively and the first matching rule wins.
func Ask(question string, s *Snapshot) string {
	if s == nil {
		return noSnapshotAnswer
	}
	q := strings.ToLower(question)
	cur := s.Currency

	switch {
	case strings.Contains(q, "save") || strings.Contains(q, "saving"):
		first := "Review your top spending categories"
		if len(s.Tips) > 0 {
			first = s.Tips[0]
		}
		return fmt.Sprintf("Based on your spending of %s this month, here are some ways to save:\n1. %s\n2. Set a daily spending limit of %s\n3. Track every expense to stay aware of your spending habits",
			cur.Format(s.Stats.TotalSpent), first, cur.Format(s.Stats.AvgPerDay.Mul(dailyLimitFactor)))

	case strings.Contains(q, "spend") || strings.Contains(q, "expense"):
		return fmt.Sprintf("Your spending summary:\n- Total spent this month: %s\n- Daily average: %s\n- Top category: %s\n- Number of transactions: %d",
			cur.Format(s.Stats.TotalSpent), cur.Format(s.Stats.AvgPerDay), s.Stats.TopCategory, s.Stats.TransactionCount)

	case strings.Contains(q, "budget"):
		if len(s.Warnings) == 0 {
			return "You're managing your budget well! Keep tracking your expenses to stay on target."
		}
		return "Budget alerts:\n" + bullets(s.Warnings)

	case strings.Contains(q, "tip") || strings.Contains(q, "advice"):
		return "Here are some personalized tips:\n" + bullets(s.Tips)
	}

	return fmt.Sprintf("Based on your financial data: %s\n\nWould you like specific advice about saving, spending, or budgeting?", s.Summary)
}

func bullets(lines []string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(l)
	}
	return b.String()
}
