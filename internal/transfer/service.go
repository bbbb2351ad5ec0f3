package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transfer
type Repository interface {
	ListTransfers(ctx context.Context, filter ListFilter, page Page) ([]*Transfer, int, error)
	GetTransfer(ctx context.Context, id int64) (*Transfer, error)
	CreateTransfer(ctx context.Context, t *Transfer) error
	// UpdateStatus changes a Pending transfer only; a terminal one is ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id int64, status Status) error
	StockLevels(ctx context.Context, productIDs []int64) (map[int64]StockLevel, error)

	BeginReconcile(ctx context.Context, id int64) (ReconcileTx, error)
}

// ReconcileTx is a database transaction holding a lock on one transfer.
// Transfer returns the transfer and items as read inside the transaction.
type ReconcileTx interface {
	Transfer() *Transfer
	DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error)
	IncrementStock(ctx context.Context, productID int64, quantity int) (bool, error)
	StockLevel(ctx context.Context, productID int64) (*StockLevel, error)
	SwapStatus(ctx context.Context, from, to Status) (bool, error)
	Commit() error
	Rollback() error
}

// LocationLookup resolves store location names. Unknown ids resolve to "".
type LocationLookup interface {
	Name(ctx context.Context, id int64) (string, error)
}

type Service struct {
	repo      Repository
	locations LocationLookup
	now       func() time.Time
}

func NewService(repo Repository, locations LocationLookup) *Service {
	return &Service{repo: repo, locations: locations, now: time.Now}
}

type ListFilter struct {
	TransferID  *string
	FromStoreID *int64
	ToStoreID   *int64
	Status      *Status
	FromDate    *time.Time
	ToDate      *time.Time // inclusive calendar day
}

type ListResult struct {
	Transfers  []*Transfer
	Pagination Pagination
}

type CreateParams struct {
	TransferID      string
	Status          Status
	CreatedBy       string
	FromStoreID     int64
	ToStoreID       int64
	FromStoreName   string
	ToStoreName     string
	Type            Type
	TransactionDate time.Time
	Items           []ItemParams

	// CheckStock runs ValidateStock before inserting and fails with an
	// *InsufficientStockError instead of creating the transfer.
	CheckStock bool
}

type ItemParams struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	GST       decimal.Decimal
}

type ReconcileResult struct {
	ID               int64
	TransferID       string
	Status           Status
	AlreadyProcessed bool
}

func (s *Service) List(ctx context.Context, filter ListFilter, page Page) (*ListResult, error) {
	if page.Number < 1 {
		return nil, invalid("page", "must be at least 1")
	}

	if page.Size < 1 {
		return nil, invalid("per_page", "must be at least 1")
	}

	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown status %q", *filter.Status)
	}

	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, invalid("to_date", "must not be before from_date")
	}

	transfers, total, err := s.repo.ListTransfers(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	if transfers == nil {
		transfers = []*Transfer{}
	}

	return &ListResult{
		Transfers:  transfers,
		Pagination: NewPagination(total, page),
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transfer, error) {
	return s.repo.GetTransfer(ctx, id)
}

// Create persists a transfer and its items atomically and returns it as Get would.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transfer, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	if params.CheckStock {
		if err := s.checkStock(ctx, params.Items); err != nil {
			return nil, err
		}
	}

	t := &Transfer{
		TransferID:      strings.TrimSpace(params.TransferID),
		Status:          params.Status,
		CreatedBy:       params.CreatedBy,
		FromStoreID:     params.FromStoreID,
		ToStoreID:       params.ToStoreID,
		FromStoreName:   params.FromStoreName,
		ToStoreName:     params.ToStoreName,
		Type:            params.Type,
		TransactionDate: params.TransactionDate,
		Items:           make([]Item, len(params.Items)),
	}

	if t.Status == "" {
		t.Status = StatusPending
	}

	if t.Type == "" {
		t.Type = TypeOut
	}

	if t.TransactionDate.IsZero() {
		t.TransactionDate = s.now()
	}

	for i, p := range params.Items {
		t.Items[i] = Item{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Price:     p.Price,
			GST:       p.GST,
		}
	}

	if err := s.fillStoreNames(ctx, t); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransfer(ctx, t); err != nil {
		return nil, err
	}

	return s.repo.GetTransfer(ctx, t.ID)
}

func (s *Service) checkStock(ctx context.Context, items []ItemParams) error {
	requests := make([]StockRequest, len(items))
	for i, item := range items {
		requests[i] = StockRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	shortfalls, err := s.ValidateStock(ctx, requests)
	if err != nil {
		return err
	}

	if len(shortfalls) > 0 {
		return &InsufficientStockError{Shortfalls: shortfalls}
	}

	return nil
}

func (s *Service) fillStoreNames(ctx context.Context, t *Transfer) error {
	if s.locations == nil {
		return nil
	}

	if t.FromStoreName == "" {
		name, err := s.locations.Name(ctx, t.FromStoreID)
		if err != nil {
			return fmt.Errorf("resolving from store name: %w", err)
		}

		t.FromStoreName = name
	}

	if t.ToStoreName == "" {
		name, err := s.locations.Name(ctx, t.ToStoreID)
		if err != nil {
			return fmt.Errorf("resolving to store name: %w", err)
		}

		t.ToStoreName = name
	}

	return nil
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.TransferID) == "" {
		return invalid("transfer_id", "is required")
	}

	if p.FromStoreID <= 0 {
		return invalid("from_store_id", "is required")
	}

	if p.ToStoreID <= 0 {
		return invalid("to_store_id", "is required")
	}

	if p.FromStoreID == p.ToStoreID {
		return invalid("to_store_id", "must differ from from_store_id")
	}

	if p.Status != "" && !p.Status.Valid() {
		return invalid("status", "unknown status %q", p.Status)
	}

	if p.Type != "" && !p.Type.Valid() {
		return invalid("type", "must be %q or %q", TypeOut, TypeIn)
	}

	if len(p.Items) == 0 {
		return invalid("items", "at least one item is required")
	}

	for i, item := range p.Items {
		if item.ProductID <= 0 {
			return invalid(fmt.Sprintf("items[%d].product_id", i), "is required")
		}

		if item.Quantity <= 0 {
			return invalid(fmt.Sprintf("items[%d].quantity", i), "must be a positive integer")
		}

		if item.Price.IsNegative() {
			return invalid(fmt.Sprintf("items[%d].price", i), "must not be negative")
		}

		if item.GST.IsNegative() {
			return invalid(fmt.Sprintf("items[%d].gst", i), "must not be negative")
		}
	}

	return nil
}

// UpdateStatus edits the status of a Pending transfer without touching stock.
// Completed and Cancelled are set only by Reconcile, and a terminal transfer is
// never edited; both cases fail with ErrInvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return invalid("status", "unknown status %q", status)
	}

	if status.Terminal() {
		return fmt.Errorf("%w: %s is set by the %q or %q action", ErrInvalidTransition, status, ActionComplete, ActionCancel)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

// ValidateStock returns the products that cannot cover the requested quantities.
// Quantities for the same product are summed. An empty result means every request fits.
func (s *Service) ValidateStock(ctx context.Context, requests []StockRequest) ([]StockShortfall, error) {
	shortfalls := []StockShortfall{}
	if len(requests) == 0 {
		return shortfalls, nil
	}

	var order []int64

	totals := make(map[int64]int, len(requests))

	for _, r := range requests {
		if _, seen := totals[r.ProductID]; !seen {
			order = append(order, r.ProductID)
		}

		totals[r.ProductID] += r.Quantity
	}

	levels, err := s.repo.StockLevels(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("reading stock levels: %w", err)
	}

	for _, id := range order {
		requested := totals[id]

		level, found := levels[id]
		if !found {
			shortfalls = append(shortfalls, StockShortfall{
				ProductID:   id,
				ProductName: unknownProductName,
				SKU:         unknownProductSKU,
				Requested:   requested,
				Available:   0,
				Error:       shortfallNotFound,
			})

			continue
		}

		if level.Quantity >= requested {
			continue
		}

		shortfalls = append(shortfalls, StockShortfall{
			ProductID:   id,
			ProductName: level.Name,
			SKU:         level.SKU,
			Requested:   requested,
			Available:   level.Quantity,
			Error:       shortfallInsufficient,
		})
	}

	return shortfalls, nil
}

// Reconcile applies the stock effect of completing or cancelling a transfer and
// moves its status, all in one database transaction.
func (s *Service) Reconcile(ctx context.Context, id int64, action Action) (*ReconcileResult, error) {
	if !action.Valid() {
		return nil, invalid("action", "must be %q or %q", ActionComplete, ActionCancel)
	}

	rtx, err := s.repo.BeginReconcile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile: %w", err)
	}
	defer rtx.Rollback()

	t := rtx.Transfer()
	target := action.Target()

	result := &ReconcileResult{ID: t.ID, TransferID: t.TransferID, Status: t.Status}

	if t.Status == target {
		result.AlreadyProcessed = true
		return result, nil
	}

	movesStock, err := transition(t.Status, action)
	if err != nil {
		return nil, err
	}

	if movesStock {
		if err := applyItems(ctx, rtx, t, action); err != nil {
			return nil, err
		}
	}

	swapped, err := rtx.SwapStatus(ctx, t.Status, target)
	if err != nil {
		return nil, fmt.Errorf("updating transfer status: %w", err)
	}

	if !swapped {
		result.AlreadyProcessed = true
		return result, nil
	}

	if err := rtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}

	result.Status = target

	return result, nil
}

// transition reports whether the action from the current status changes stock.
// Cancelling a Pending transfer only changes status: nothing was applied yet.
func transition(current Status, action Action) (bool, error) {
	switch {
	case current == StatusPending && action == ActionComplete:
		return true, nil
	case current == StatusCompleted && action == ActionCancel:
		return true, nil
	case current == StatusPending && action == ActionCancel:
		return false, nil
	}

	return false, fmt.Errorf("%w: cannot %s a %s transfer", ErrInvalidTransition, action, current)
}

// decrements reports whether the (type, action) pair removes stock.
// Completing an outbound transfer and cancelling an inbound one both take stock away.
func decrements(t Type, a Action) bool {
	return (t == TypeOut) == (a == ActionComplete)
}

func applyItems(ctx context.Context, rtx ReconcileTx, t *Transfer, action Action) error {
	dec := decrements(t.Type, action)

	for _, item := range t.Items {
		if !dec {
			ok, err := rtx.IncrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("incrementing stock for product %d: %w", item.ProductID, err)
			}

			if !ok {
				return fmt.Errorf("%w: %d", ErrUnknownProduct, item.ProductID)
			}

			continue
		}

		ok, err := rtx.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for product %d: %w", item.ProductID, err)
		}

		if ok {
			continue
		}

		return shortfallFor(ctx, rtx, item)
	}

	return nil
}

func shortfallFor(ctx context.Context, rtx ReconcileTx, item Item) error {
	level, err := rtx.StockLevel(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("reading stock for product %d: %w", item.ProductID, err)
	}

	sf := StockShortfall{
		ProductID:   item.ProductID,
		ProductName: unknownProductName,
		SKU:         unknownProductSKU,
		Requested:   item.Quantity,
		Error:       shortfallNotFound,
	}

	if level != nil {
		sf.ProductName = level.Name
		sf.SKU = level.SKU
		sf.Available = level.Quantity
		sf.Error = shortfallInsufficient
	}

	return &InsufficientStockError{Shortfalls: []StockShortfall{sf}}
}
