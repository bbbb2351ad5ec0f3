package product

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=product
type Repository interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	// UpsertProducts writes rows by SKU and stamps each with batchID.
	UpsertProducts(ctx context.Context, batchID uuid.UUID, rows []Row) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// List returns every product ordered by name.
func (s *Service) List(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if products == nil {
		products = []*Product{}
	}

	return products, nil
}

// Import parses a stock file and upserts its valid rows by SKU in one transaction.
// Rows that fail to parse are skipped and reported in the result.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, rowErrs, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		BatchID: uuid.New(),
		Skipped: len(rowErrs),
		Errors:  rowErrs,
	}

	if result.Errors == nil {
		result.Errors = []RowError{}
	}

	if len(rows) == 0 {
		return result, nil
	}

	n, err := s.repo.UpsertProducts(ctx, result.BatchID, rows)
	if err != nil {
		return nil, fmt.Errorf("upserting products: %w", err)
	}

	result.Imported = n

	slog.Info("product stock imported",
		"batch_id", result.BatchID,
		"imported", result.Imported,
		"skipped", result.Skipped,
	)

	return result, nil
}
