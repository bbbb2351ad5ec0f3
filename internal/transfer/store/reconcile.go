package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexustechhub/mdts/internal/transfer"
)

type reconcileTx struct {
	tx       *sql.Tx
	transfer *transfer.Transfer
}

// BeginReconcile opens a transaction and locks the transfer row, so concurrent
// complete/cancel calls for the same transfer run one after the other.
func (s *Store) BeginReconcile(ctx context.Context, id int64) (transfer.ReconcileTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning reconcile tx: %w", err)
	}

	t, err := getTransfer(ctx, dbTx, id, " FOR UPDATE")
	if err != nil {
		dbTx.Rollback()
		return nil, err
	}

	return &reconcileTx{tx: dbTx, transfer: t}, nil
}

func (r *reconcileTx) Transfer() *transfer.Transfer { return r.transfer }
func (r *reconcileTx) Commit() error                { return r.tx.Commit() }
func (r *reconcileTx) Rollback() error              { return r.tx.Rollback() }

// DecrementStock removes quantity only if enough stock remains. It reports false
// when the guarded update matched no row.
func (r *reconcileTx) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`

	return r.execAffected(ctx, query, quantity, productID)
}

// IncrementStock reports false when the product does not exist.
func (r *reconcileTx) IncrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2
	`

	return r.execAffected(ctx, query, quantity, productID)
}

func (r *reconcileTx) StockLevel(ctx context.Context, productID int64) (*transfer.StockLevel, error) {
	query := `SELECT id, name, sku, stock_quantity FROM products WHERE id = $1`

	var l transfer.StockLevel

	err := r.tx.QueryRowContext(ctx, query, productID).Scan(&l.ProductID, &l.Name, &l.SKU, &l.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading stock level: %w", err)
	}

	return &l, nil
}

// SwapStatus moves the status only if it still equals from.
func (r *reconcileTx) SwapStatus(ctx context.Context, from, to transfer.Status) (bool, error) {
	query := `
		UPDATE inventory_transfers
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	return r.execAffected(ctx, query, to, r.transfer.ID, from)
}

func (r *reconcileTx) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
