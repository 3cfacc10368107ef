package entity

import "time"

// Kind is the closed set of transaction kinds.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single ledger entry. The owner is immutable after
// creation; every read and write is scoped to it. Amounts are integer
// cents (see pkg/money).
type Transaction struct {
	ID          int64
	UserID      string
	Kind        Kind
	AmountCents int64
	Category    string
	Description string
	Timestamp   time.Time // defaults to creation time, client may override
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MonthlyStat is an aggregate row for the account stats view.
type MonthlyStat struct {
	Month             string // YYYY-MM
	TransactionCount  int64
	TotalIncomeCents  int64
	TotalExpenseCents int64
}
