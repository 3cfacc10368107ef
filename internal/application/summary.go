package application

import "github.com/oksasatya/expense-tracker-api/internal/domain/entity"

// Summary holds aggregate totals in integer cents. Only expenses get a
// per-category breakdown; income does not.
type Summary struct {
	TotalIncomeCents  int64
	TotalExpenseCents int64
	BalanceCents      int64
	CategoryBreakdown map[string]int64
}

// Summarize computes totals over exactly the snapshot passed in. It is a
// pure function; callers decide how the set was filtered and must not
// mix it with a concurrent re-fetch.
func Summarize(transactions []entity.Transaction) Summary {
	s := Summary{CategoryBreakdown: make(map[string]int64)}
	for _, t := range transactions {
		switch t.Kind {
		case entity.KindIncome:
			s.TotalIncomeCents += t.AmountCents
		case entity.KindExpense:
			s.TotalExpenseCents += t.AmountCents
			category := t.Category
			if category == "" {
				category = "Other"
			}
			s.CategoryBreakdown[category] += t.AmountCents
		}
	}
	s.BalanceCents = s.TotalIncomeCents - s.TotalExpenseCents
	return s
}
