package transfer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a transfer.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}

	return false
}

// Terminal reports whether s is only reachable through a complete or cancel action.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Type is the direction of a transfer relative to the store performing it.
type Type string

const (
	TypeOut Type = "Transaction Out"
	TypeIn  Type = "Transaction In"
)

func (t Type) Valid() bool {
	return t == TypeOut || t == TypeIn
}

// Action is an operator request that moves a transfer to a terminal status.
type Action string

const (
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

func (a Action) Valid() bool {
	return a == ActionComplete || a == ActionCancel
}

// Target returns the status a successful action leaves the transfer in.
func (a Action) Target() Status {
	if a == ActionComplete {
		return StatusCompleted
	}

	return StatusCancelled
}

// Transfer is a movement of stock between two store locations.
type Transfer struct {
	ID              int64
	TransferID      string // caller-assigned, e.g. "TO-140"
	Status          Status
	CreatedBy       string
	FromStoreID     int64
	ToStoreID       int64
	FromStoreName   string
	ToStoreName     string
	Type            Type
	TransactionDate time.Time
	Items           []Item
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item is one product line of a transfer. Price and GST are snapshots taken at creation.
type Item struct {
	ProductID int64
	Name      string // loaded via JOIN
	SKU       string // loaded via JOIN
	Quantity  int
	Price     decimal.Decimal
	GST       decimal.Decimal
}

// StockLevel is the current stock of a product.
type StockLevel struct {
	ProductID int64
	Name      string
	SKU       string
	Quantity  int
}

// StockRequest asks whether a quantity of a product can be supplied.
type StockRequest struct {
	ProductID int64
	Quantity  int
}

// StockShortfall describes a product that cannot cover the requested quantity.
type StockShortfall struct {
	ProductID   int64
	ProductName string
	SKU         string
	Requested   int
	Available   int
	Error       string
}

const (
	shortfallNotFound     = "Product not found"
	shortfallInsufficient = "Insufficient stock"

	unknownProductName = "Unknown product"
	unknownProductSKU  = "N/A"
)
