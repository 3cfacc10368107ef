package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	"github.com/oksasatya/expense-tracker-api/internal/domain/repository"
)

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, kind, amount_cents, category, description, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.Kind, t.AmountCents, t.Category, t.Description, t.Timestamp)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	t := &entity.Transaction{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, kind, amount_cents, category, description, timestamp, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`, id)

	if err := row.Scan(&t.ID, &t.UserID, &t.Kind, &t.AmountCents, &t.Category,
		&t.Description, &t.Timestamp, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// whereClause builds the owner + filter predicate. Date bounds compare
// the date portion only, inclusive on both ends.
func whereClause(userID string, f repository.TransactionFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Kind != nil {
		add("kind = $%d", *f.Kind)
	}
	if f.Category != nil {
		add("category = $%d", *f.Category)
	}
	if f.DateFrom != nil {
		add("timestamp::date >= $%d::date", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("timestamp::date <= $%d::date", *f.DateTo)
	}
	return strings.Join(conds, " AND "), args
}

func (r *TransactionRepository) List(ctx context.Context, userID string, f repository.TransactionFilter, p *repository.Page) ([]entity.Transaction, int64, error) {
	where, args := whereClause(userID, f)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, kind, amount_cents, category, description, timestamp, created_at, updated_at
		FROM transactions
		WHERE ` + where + `
		ORDER BY timestamp DESC, id DESC`
	if p != nil {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, p.Size, (p.Number-1)*p.Size)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]entity.Transaction, 0)
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Kind, &t.AmountCents, &t.Category,
			&t.Description, &t.Timestamp, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update writes the mutable fields guarded by id AND owner in one
// statement; a row deleted in between simply matches nothing.
func (r *TransactionRepository) Update(ctx context.Context, t *entity.Transaction) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET kind = $1, amount_cents = $2, category = $3, description = $4, timestamp = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at
	`, t.Kind, t.AmountCents, t.Category, t.Description, t.Timestamp, t.ID, t.UserID)

	if err := row.Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID string, id int64) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) DistinctCategories(ctx context.Context, userID string, kind entity.Kind) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT category FROM transactions
		WHERE user_id = $1 AND kind = $2
		ORDER BY category
	`, userID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) CountByOwner(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (r *TransactionRepository) MonthlyStats(ctx context.Context, userID string, months int) ([]entity.MonthlyStat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(timestamp, 'YYYY-MM') AS month,
		       count(*),
		       coalesce(sum(amount_cents) FILTER (WHERE kind = 'income'), 0),
		       coalesce(sum(amount_cents) FILTER (WHERE kind = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND timestamp >= now() - make_interval(months => $2)
		GROUP BY 1
		ORDER BY 1 DESC
	`, userID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.MonthlyStat, 0)
	for rows.Next() {
		var s entity.MonthlyStat
		if err := rows.Scan(&s.Month, &s.TransactionCount, &s.TotalIncomeCents, &s.TotalExpenseCents); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ repository.TransactionRepository = (*TransactionRepository)(nil)
