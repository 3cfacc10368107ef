package repository

import (
	"context"
	"time"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
)

// TransactionFilter narrows a ledger query. Every field is independently
// optional; date bounds are inclusive and compared on the date portion
// of the transaction timestamp only.
type TransactionFilter struct {
	Kind     *entity.Kind
	Category *string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Page is 1-based pagination. A nil *Page means the full filtered set.
type Page struct {
	Number int
	Size   int
}

// TransactionRepository owns ledger rows. Update and Delete are
// conditional on both id and owner in a single statement, so a
// concurrent delete can never be followed by a stale write.
type TransactionRepository interface {
	Create(ctx context.Context, t *entity.Transaction) error
	// GetByID looks up by id alone and returns the owner-tagged row;
	// the service decides how an owner mismatch is surfaced.
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	// List returns the filtered rows ordered by timestamp descending,
	// ties broken by insertion order, plus the total count before
	// pagination.
	List(ctx context.Context, userID string, f TransactionFilter, p *Page) ([]entity.Transaction, int64, error)
	// Update writes all mutable fields of t, guarded by id and owner.
	Update(ctx context.Context, t *entity.Transaction) error
	Delete(ctx context.Context, userID string, id int64) error
	DistinctCategories(ctx context.Context, userID string, kind entity.Kind) ([]string, error)

	CountByOwner(ctx context.Context, userID string) (int64, error)
	// MonthlyStats aggregates per calendar month over the last `months`
	// months, newest first.
	MonthlyStats(ctx context.Context, userID string, months int) ([]entity.MonthlyStat, error)
}
