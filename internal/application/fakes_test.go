package application

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker-api/internal/domain/repository"
)

// fakeUserRepo is an in-memory UserRepository with the same semantics as
// the postgres implementation, including single-use token consumption.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*fakeUserRow
}

type fakeUserRow struct {
	entity.User
	resetToken        string
	resetTokenExpiry  time.Time
	verifyToken       string
	verifyTokenExpiry time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*fakeUserRow{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.users {
		if row.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = "user-" + strconv.Itoa(f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &fakeUserRow{User: cp}
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := row.User
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.users {
		if row.Email == strings.ToLower(email) {
			cp := row.User
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, other := range f.users {
		if id != u.ID && other.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	row.Email = u.Email
	row.Name = u.Name
	row.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	row.Password = passwordHash
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SetResetToken(_ context.Context, userID, token string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	row.resetToken = token
	row.resetTokenExpiry = expiry
	return nil
}

func (f *fakeUserRepo) ConsumeResetToken(_ context.Context, token, passwordHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.users {
		if row.resetToken == token && row.resetToken != "" && row.resetTokenExpiry.After(time.Now()) {
			row.Password = passwordHash
			row.resetToken = ""
			row.resetTokenExpiry = time.Time{}
			return id, nil
		}
	}
	return "", repo.ErrNotFound
}

func (f *fakeUserRepo) SetVerifyToken(_ context.Context, userID, token string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.users[userID]
	if !ok {
		return repo.ErrNotFound
	}
	row.verifyToken = token
	row.verifyTokenExpiry = expiry
	return nil
}

func (f *fakeUserRepo) ConsumeVerifyToken(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.users {
		if row.verifyToken == token && row.verifyToken != "" && row.verifyTokenExpiry.After(time.Now()) {
			row.EmailVerified = true
			row.verifyToken = ""
			row.verifyTokenExpiry = time.Time{}
			return id, nil
		}
	}
	return "", repo.ErrNotFound
}

var _ repo.UserRepository = (*fakeUserRepo)(nil)

// fakeTxnRepo is an in-memory TransactionRepository matching the SQL
// ordering and filtering behavior.
type fakeTxnRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []entity.Transaction
}

func newFakeTxnRepo() *fakeTxnRepo { return &fakeTxnRepo{} }

func (f *fakeTxnRepo) Create(_ context.Context, t *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.rows = append(f.rows, *t)
	return nil
}

func (f *fakeTxnRepo) GetByID(_ context.Context, id int64) (*entity.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func sameOrBeforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).
		Compare(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)) <= 0
}

func matches(t entity.Transaction, userID string, fl repo.TransactionFilter) bool {
	if t.UserID != userID {
		return false
	}
	if fl.Kind != nil && t.Kind != *fl.Kind {
		return false
	}
	if fl.Category != nil && t.Category != *fl.Category {
		return false
	}
	if fl.DateFrom != nil && !sameOrBeforeDate(*fl.DateFrom, t.Timestamp) {
		return false
	}
	if fl.DateTo != nil && !sameOrBeforeDate(t.Timestamp, *fl.DateTo) {
		return false
	}
	return true
}

func (f *fakeTxnRepo) List(_ context.Context, userID string, fl repo.TransactionFilter, p *repo.Page) ([]entity.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Transaction
	for _, t := range f.rows {
		if matches(t, userID, fl) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	total := int64(len(out))
	if p != nil {
		start := (p.Number - 1) * p.Size
		if start >= len(out) {
			return []entity.Transaction{}, total, nil
		}
		end := start + p.Size
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (f *fakeTxnRepo) Update(_ context.Context, t *entity.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == t.ID && f.rows[i].UserID == t.UserID {
			t.UpdatedAt = time.Now()
			f.rows[i] = *t
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeTxnRepo) Delete(_ context.Context, userID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeTxnRepo) DistinctCategories(_ context.Context, userID string, kind entity.Kind) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, t := range f.rows {
		if t.UserID == userID && t.Kind == kind && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeTxnRepo) CountByOwner(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.rows {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeTxnRepo) MonthlyStats(_ context.Context, userID string, months int) ([]entity.MonthlyStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cutoff := time.Now().AddDate(0, -months, 0)
	byMonth := map[string]*entity.MonthlyStat{}
	for _, t := range f.rows {
		if t.UserID != userID || t.Timestamp.Before(cutoff) {
			continue
		}
		key := t.Timestamp.Format("2006-01")
		st, ok := byMonth[key]
		if !ok {
			st = &entity.MonthlyStat{Month: key}
			byMonth[key] = st
		}
		st.TransactionCount++
		switch t.Kind {
		case entity.KindIncome:
			st.TotalIncomeCents += t.AmountCents
		case entity.KindExpense:
			st.TotalExpenseCents += t.AmountCents
		}
	}
	out := make([]entity.MonthlyStat, 0, len(byMonth))
	for _, st := range byMonth {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

var _ repo.TransactionRepository = (*fakeTxnRepo)(nil)
