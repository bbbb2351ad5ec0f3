package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexustechhub/mdts/internal/transfer"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransferColumns = `
	t.id, t.transfer_id, t.status, t.created_by, t.from_store_id, t.to_store_id,
	t.from_store_name, t.to_store_name, t.type, t.transaction_date, t.created_at, t.updated_at
`

// scanTransfer reads a transfer header. Column order follows selectTransferColumns.
func scanTransfer(s scanner) (*transfer.Transfer, error) {
	var t transfer.Transfer

	var statusStr, typeStr string

	if err := s.Scan(
		&t.ID, &t.TransferID, &statusStr, &t.CreatedBy, &t.FromStoreID, &t.ToStoreID,
		&t.FromStoreName, &t.ToStoreName, &typeStr, &t.TransactionDate, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Status = transfer.Status(statusStr)
	t.Type = transfer.Type(typeStr)
	t.Items = []transfer.Item{}

	return &t, nil
}

// loadItems attaches line items, with product name and sku, to each transfer.
func loadItems(ctx context.Context, q querier, transfers []*transfer.Transfer) error {
	if len(transfers) == 0 {
		return nil
	}

	ids := make([]int64, len(transfers))
	byID := make(map[int64]*transfer.Transfer, len(transfers))

	for i, t := range transfers {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	query := `
		SELECT ti.transfer_id, ti.product_id, COALESCE(p.name, ''), COALESCE(p.sku, ''),
		       ti.quantity, ti.price, ti.gst
		FROM inventory_transfer_items ti
		LEFT JOIN products p ON p.id = ti.product_id
		WHERE ti.transfer_id = ANY($1)
		ORDER BY ti.id ASC`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("loading transfer items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			transferID int64
			item       transfer.Item
		)

		if err := rows.Scan(
			&transferID, &item.ProductID, &item.Name, &item.SKU,
			&item.Quantity, &item.Price, &item.GST,
		); err != nil {
			return fmt.Errorf("scanning transfer item: %w", err)
		}

		if t, ok := byID[transferID]; ok {
			t.Items = append(t.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating transfer items: %w", err)
	}

	return nil
}

func (s *Store) ListTransfers(ctx context.Context, filter transfer.ListFilter, page transfer.Page) ([]*transfer.Transfer, int, error) {
	where, args := buildFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_transfers t`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting transfers: %w", err)
	}

	query := `SELECT ` + selectTransferColumns + `
		FROM inventory_transfers t` + where +
		fmt.Sprintf(" ORDER BY t.transaction_date DESC, t.id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	transfers := []*transfer.Transfer{}

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning transfer: %w", err)
		}

		transfers = append(transfers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating transfers: %w", err)
	}

	if err := loadItems(ctx, s.db, transfers); err != nil {
		return nil, 0, err
	}

	return transfers, total, nil
}

func (s *Store) GetTransfer(ctx context.Context, id int64) (*transfer.Transfer, error) {
	return getTransfer(ctx, s.db, id, "")
}

func getTransfer(ctx context.Context, q querier, id int64, lock string) (*transfer.Transfer, error) {
	query := `SELECT ` + selectTransferColumns + `
		FROM inventory_transfers t
		WHERE t.id = $1` + lock

	t, err := scanTransfer(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transfer.ErrNotFound
		}

		return nil, fmt.Errorf("getting transfer: %w", err)
	}

	if err := loadItems(ctx, q, []*transfer.Transfer{t}); err != nil {
		return nil, err
	}

	return t, nil
}

// CreateTransfer inserts the header and every item in one database transaction.
// Any failing insert rolls the whole transfer back.
func (s *Store) CreateTransfer(ctx context.Context, t *transfer.Transfer) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	headerQuery := `
		INSERT INTO inventory_transfers (
			transfer_id, status, created_by, from_store_id, to_store_id,
			from_store_name, to_store_name, type, transaction_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, headerQuery,
		t.TransferID,
		t.Status,
		t.CreatedBy,
		t.FromStoreID,
		t.ToStoreID,
		t.FromStoreName,
		t.ToStoreName,
		t.Type,
		t.TransactionDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return fmt.Errorf("creating transfer %q: %w", t.TransferID, transfer.ErrDuplicateTransferID)
		}

		return fmt.Errorf("creating transfer: %w", err)
	}

	itemQuery := `
		INSERT INTO inventory_transfer_items (transfer_id, product_id, quantity, price, gst)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range t.Items {
		if _, err := dbTx.ExecContext(ctx, itemQuery,
			t.ID, item.ProductID, item.Quantity, item.Price, item.GST,
		); err != nil {
			if pgCode(err) == codeForeignKeyViolation {
				return fmt.Errorf("creating item for product %d: %w", item.ProductID, transfer.ErrUnknownProduct)
			}

			return fmt.Errorf("creating transfer item: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// UpdateStatus only edits Pending transfers. A terminal transfer yields
// ErrInvalidTransition, a missing one ErrNotFound.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status transfer.Status) error {
	query := `
		UPDATE inventory_transfers
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := s.db.ExecContext(ctx, query, status, id, transfer.StatusPending)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if n > 0 {
		return nil
	}

	var current transfer.Status

	err = s.db.QueryRowContext(ctx, `SELECT status FROM inventory_transfers WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return transfer.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("reading status: %w", err)
	}

	return fmt.Errorf("%w: transfer is %s", transfer.ErrInvalidTransition, current)
}

func (s *Store) StockLevels(ctx context.Context, productIDs []int64) (map[int64]transfer.StockLevel, error) {
	levels := make(map[int64]transfer.StockLevel, len(productIDs))
	if len(productIDs) == 0 {
		return levels, nil
	}

	query := `
		SELECT id, name, sku, stock_quantity
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := s.db.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("reading stock levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l transfer.StockLevel
		if err := rows.Scan(&l.ProductID, &l.Name, &l.SKU, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scanning stock level: %w", err)
		}

		levels[l.ProductID] = l
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock levels: %w", err)
	}

	return levels, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
