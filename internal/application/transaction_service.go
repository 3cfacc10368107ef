package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/expense-tracker-api/internal/domain/entity"
	repo "github.com/oksasatya/expense-tracker-api/internal/domain/repository"
	"github.com/oksasatya/expense-tracker-api/pkg/money"
)

var (
	ErrInvalidKind     = errors.New("kind must be income or expense")
	ErrInvalidAmount   = money.ErrInvalidAmount
	ErrMissingCategory = errors.New("category is required")
	// ErrTransactionNotFound is what callers see both when a transaction
	// does not exist and when it belongs to someone else. The two cases
	// are distinguished only in internal logs.
	ErrTransactionNotFound = errors.New("transaction not found")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// TransactionService owns the ledger: validation, ownership enforcement
// and the derived aggregate views. Elasticsearch indexing is best-effort
// and never fails the primary write.
type TransactionService struct {
	Repo    repo.TransactionRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewTransactionService(r repo.TransactionRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *TransactionService {
	return &TransactionService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex}
}

// CreateTransactionInput carries the raw request values; Amount is a
// decimal string parsed into cents here.
type CreateTransactionInput struct {
	Kind        string
	Amount      string
	Category    string
	Description string
	Timestamp   *time.Time
}

func (s *TransactionService) Create(ctx context.Context, userID string, in CreateTransactionInput) (*entity.Transaction, error) {
	kind := entity.Kind(in.Kind)
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	cents, err := money.ParseDecimal(in.Amount)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, ErrMissingCategory
	}
	ts := time.Now()
	if in.Timestamp != nil {
		// Backdating is allowed; the timestamp is the client's to set.
		ts = *in.Timestamp
	}

	t := &entity.Transaction{
		UserID:      userID,
		Kind:        kind,
		AmountCents: cents,
		Category:    category,
		Description: in.Description,
		Timestamp:   ts,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.indexTransaction(ctx, t)
	return t, nil
}

func clampPage(page, pageSize int) repo.Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return repo.Page{Number: page, Size: pageSize}
}

// List returns one page of the owner's filtered transactions plus the
// total count before pagination.
func (s *TransactionService) List(ctx context.Context, userID string, f repo.TransactionFilter, page, pageSize int) ([]entity.Transaction, int64, error) {
	p := clampPage(page, pageSize)
	return s.Repo.List(ctx, userID, f, &p)
}

// Get returns a single transaction owned by userID.
func (s *TransactionService) Get(ctx context.Context, userID string, id int64) (*entity.Transaction, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if t.UserID != userID {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).
			Warn("read attempt on foreign transaction")
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

// UpdateTransactionInput distinguishes "field absent" (nil) from
// "field present" so a description can be cleared explicitly.
type UpdateTransactionInput struct {
	Kind        *string
	Amount      *string
	Category    *string
	Description *string
	Timestamp   *time.Time
}

func (s *TransactionService) Update(ctx context.Context, userID string, id int64, in UpdateTransactionInput) (*entity.Transaction, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if t.UserID != userID {
		// Cross-owner access: logged, but indistinguishable from absence
		// for the caller.
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).
			Warn("update attempt on foreign transaction")
		return nil, ErrTransactionNotFound
	}

	if in.Kind != nil {
		kind := entity.Kind(*in.Kind)
		if !kind.Valid() {
			return nil, ErrInvalidKind
		}
		t.Kind = kind
	}
	if in.Amount != nil {
		cents, err := money.ParseDecimal(*in.Amount)
		if err != nil {
			return nil, err
		}
		t.AmountCents = cents
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return nil, ErrMissingCategory
		}
		t.Category = category
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Timestamp != nil {
		t.Timestamp = *in.Timestamp
	}

	if err := s.Repo.Update(ctx, t); err != nil {
		// The row vanished between the read and the guarded write.
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	s.indexTransaction(ctx, t)
	return t, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if t, gerr := s.Repo.GetByID(ctx, id); gerr == nil && t.UserID != userID {
				s.Logger.WithFields(logrus.Fields{"user_id": userID, "transaction_id": id}).
					Warn("delete attempt on foreign transaction")
			}
			return ErrTransactionNotFound
		}
		return err
	}
	s.deleteFromIndex(ctx, id)
	return nil
}

// Categories returns the owner's distinct category labels per kind.
func (s *TransactionService) Categories(ctx context.Context, userID string) (income, expense []string, err error) {
	income, err = s.Repo.DistinctCategories(ctx, userID, entity.KindIncome)
	if err != nil {
		return nil, nil, err
	}
	expense, err = s.Repo.DistinctCategories(ctx, userID, entity.KindExpense)
	if err != nil {
		return nil, nil, err
	}
	return income, expense, nil
}

// Summary fetches the full filtered set in one snapshot and summarizes
// it; the aggregation never re-queries.
func (s *TransactionService) Summary(ctx context.Context, userID string, f repo.TransactionFilter) (Summary, error) {
	items, _, err := s.Repo.List(ctx, userID, f, nil)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(items), nil
}

// --- Elasticsearch secondary index ---

func (s *TransactionService) indexTransaction(ctx context.Context, t *entity.Transaction) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":           t.ID,
		"user_id":      t.UserID,
		"kind":         t.Kind,
		"amount_cents": t.AmountCents,
		"category":     t.Category,
		"description":  t.Description,
		"timestamp":    t.Timestamp.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: strconv.FormatInt(t.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("transaction_id", t.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithFields(logrus.Fields{"status": res.Status(), "transaction_id": t.ID}).
			Warn("es index response error")
	}
}

func (s *TransactionService) deleteFromIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("transaction_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// Search performs a free-text match on description and category,
// restricted to the owner with a term filter.
func (s *TransactionService) Search(ctx context.Context, userID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"description^2", "category"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
