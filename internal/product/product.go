package product

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

type Product struct {
	ID            int64
	SKU           string
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	// ImportBatchID is the import that last wrote the product, nil if none has.
	ImportBatchID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Row is one parsed line of a stock import file.
type Row struct {
	SKU           string
	Name          string
	Price         decimal.Decimal
	StockQuantity int
}

// RowError reports a skipped line. Line is 1-based within the uploaded file.
type RowError struct {
	Line   int
	Reason string
}

type ImportResult struct {
	BatchID  uuid.UUID
	Imported int
	Skipped  int
	Errors   []RowError
}
