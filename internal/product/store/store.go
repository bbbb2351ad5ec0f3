package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"

	"github.com/nexustechhub/mdts/internal/product"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectProductColumns = `id, sku, name, price, stock_quantity, import_batch_id, created_at, updated_at`

func scanProduct(s scanner) (*product.Product, error) {
	var (
		p       product.Product
		batchID uuid.NullUUID
	)

	if err := s.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &p.StockQuantity, &batchID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if batchID.Valid {
		p.ImportBatchID = &batchID.UUID
	}

	return &p, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]*product.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	return products, rows.Err()
}

// UpsertProducts writes every row in one transaction keyed by SKU and records
// batchID on each. Concurrent imports are serialised with an advisory lock so
// their stock values do not interleave.
func (s *Store) UpsertProducts(ctx context.Context, batchID uuid.UUID, rows []product.Row) (int, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, importLockKey()); err != nil {
		return 0, fmt.Errorf("acquiring import lock: %w", err)
	}

	query := `
		INSERT INTO products (sku, name, price, stock_quantity, import_batch_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sku) DO UPDATE
		SET name = EXCLUDED.name,
		    price = EXCLUDED.price,
		    stock_quantity = EXCLUDED.stock_quantity,
		    import_batch_id = EXCLUDED.import_batch_id,
		    updated_at = NOW()
	`

	for _, r := range rows {
		if _, err := dbTx.ExecContext(ctx, query, r.SKU, r.Name, r.Price, r.StockQuantity, batchID); err != nil {
			return 0, fmt.Errorf("upserting product %s: %w", r.SKU, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return len(rows), nil
}

func importLockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("products:import"))

	return int64(h.Sum64())
}
