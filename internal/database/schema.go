package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the service owns. Statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id             BIGSERIAL PRIMARY KEY,
    sku            TEXT NOT NULL UNIQUE,
    name           TEXT NOT NULL,
    price          NUMERIC(12, 2) NOT NULL DEFAULT 0,
    stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

ALTER TABLE products ADD COLUMN IF NOT EXISTS import_batch_id UUID;

CREATE TABLE IF NOT EXISTS locations (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS inventory_transfers (
    id               BIGSERIAL PRIMARY KEY,
    transfer_id      TEXT NOT NULL UNIQUE,
    status           TEXT NOT NULL DEFAULT 'Pending'
                     CHECK (status IN ('Pending', 'Completed', 'Cancelled')),
    created_by       TEXT NOT NULL DEFAULT '',
    from_store_id    BIGINT NOT NULL,
    to_store_id      BIGINT NOT NULL,
    from_store_name  TEXT NOT NULL DEFAULT '',
    to_store_name    TEXT NOT NULL DEFAULT '',
    type             TEXT NOT NULL DEFAULT 'Transaction Out'
                     CHECK (type IN ('Transaction Out', 'Transaction In')),
    transaction_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_inventory_transfers_transaction_date
    ON inventory_transfers (transaction_date DESC);

CREATE TABLE IF NOT EXISTS inventory_transfer_items (
    id          BIGSERIAL PRIMARY KEY,
    transfer_id BIGINT NOT NULL REFERENCES inventory_transfers(id),
    product_id  BIGINT NOT NULL REFERENCES products(id),
    quantity    INTEGER NOT NULL CHECK (quantity > 0),
    price       NUMERIC(12, 2) NOT NULL,
    gst         NUMERIC(12, 2) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_inventory_transfer_items_transfer
    ON inventory_transfer_items (transfer_id);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}
