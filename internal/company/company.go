package company

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrCompanyNotFound indicates a missing company.
	ErrCompanyNotFound = errors.New("company: not found")
	// ErrDefaultCurrencyMissing indicates a company row without a
	// default currency. Postings cannot proceed until it is set.
	ErrDefaultCurrencyMissing = errors.New("company: default currency missing")
)

// Company holds per-tenant settings the posting engine and reports
// depend on. DefaultCurrency is fixed after the first posting.
type Company struct {
	ID                   int64
	Name                 string
	DefaultCurrency      string
	FiscalYearStartMonth time.Month
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Repository reads company settings.
type Repository interface {
	Get(ctx context.Context, companyID int64) (Company, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a pgx-backed company repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, companyID int64) (Company, error) {
	var c Company
	var month int
	err := r.db.QueryRow(ctx,
		`SELECT id, name, default_currency, fiscal_year_start_month, created_at, updated_at
FROM companies WHERE id=$1`, companyID).
		Scan(&c.ID, &c.Name, &c.DefaultCurrency, &month, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrCompanyNotFound
		}
		return Company{}, err
	}
	c.FiscalYearStartMonth = time.Month(month)
	return c, nil
}

func (r *repository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Service caches nothing and answers settings queries directly; the
// settings table is tiny and sits behind the pool's prepared cache.
type Service struct {
	repo Repository
}

// NewService builds the company settings service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get loads one company.
func (s *Service) Get(ctx context.Context, companyID int64) (Company, error) {
	return s.repo.Get(ctx, companyID)
}

// ListIDs returns every company id, used by scheduled jobs.
func (s *Service) ListIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListIDs(ctx)
}

// DefaultCurrency returns the currency every journal entry posts in.
func (s *Service) DefaultCurrency(ctx context.Context, companyID int64) (string, error) {
	c, err := s.repo.Get(ctx, companyID)
	if err != nil {
		return "", err
	}
	if c.DefaultCurrency == "" {
		return "", ErrDefaultCurrencyMissing
	}
	return c.DefaultCurrency, nil
}
