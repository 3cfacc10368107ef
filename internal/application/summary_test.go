package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
)

func TestSummarize(t *testing.T) {
	txns := []entity.Transaction{
		{Kind: entity.KindIncome, AmountCents: 100000, Category: "Salary"},
		{Kind: entity.KindExpense, AmountCents: 30000, Category: "Food"},
		{Kind: entity.KindExpense, AmountCents: 15000, Category: "Transport"},
	}

	s := Summarize(txns)

	assert.Equal(t, int64(100000), s.TotalIncomeCents)
	assert.Equal(t, int64(45000), s.TotalExpenseCents)
	assert.Equal(t, int64(55000), s.BalanceCents)
	assert.Equal(t, map[string]int64{
		"Food":      30000,
		"Transport": 15000,
	}, s.CategoryBreakdown)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TotalIncomeCents)
	assert.Zero(t, s.TotalExpenseCents)
	assert.Zero(t, s.BalanceCents)
	assert.Empty(t, s.CategoryBreakdown)
}

func TestSummarizeIncomeExcludedFromBreakdown(t *testing.T) {
	txns := []entity.Transaction{
		{Kind: entity.KindIncome, AmountCents: 5000, Category: "Salary"},
		{Kind: entity.KindExpense, AmountCents: 2000, Category: "Salary"},
	}
	s := Summarize(txns)
	assert.Equal(t, map[string]int64{"Salary": 2000}, s.CategoryBreakdown)
}

func TestSummarizeUncategorizedExpenseFallsBackToOther(t *testing.T) {
	txns := []entity.Transaction{
		{Kind: entity.KindExpense, AmountCents: 1200, Category: ""},
		{Kind: entity.KindExpense, AmountCents: 800, Category: "Other"},
	}
	s := Summarize(txns)
	assert.Equal(t, map[string]int64{"Other": 2000}, s.CategoryBreakdown)
}
