package transfer_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"github.com/nexustechhub/mdts/internal/transfer"
)

// memRepo keeps products and transfers in memory. Reconcile transactions work on
// a copy of the stock table that replaces the original only on commit.
type memRepo struct {
	stock     map[int64]int
	names     map[int64]string
	transfers map[int64]*transfer.Transfer
	byCode    map[string]int64
	nextID    int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		stock:     map[int64]int{},
		names:     map[int64]string{},
		transfers: map[int64]*transfer.Transfer{},
		byCode:    map[string]int64{},
	}
}

func (m *memRepo) ListTransfers(context.Context, transfer.ListFilter, transfer.Page) ([]*transfer.Transfer, int, error) {
	return nil, 0, errors.New("not supported")
}

func (m *memRepo) GetTransfer(_ context.Context, id int64) (*transfer.Transfer, error) {
	t, ok := m.transfers[id]
	if !ok {
		return nil, transfer.ErrNotFound
	}

	cp := *t

	return &cp, nil
}

func (m *memRepo) CreateTransfer(_ context.Context, t *transfer.Transfer) error {
	if _, dup := m.byCode[t.TransferID]; dup {
		return transfer.ErrDuplicateTransferID
	}

	for _, item := range t.Items {
		if _, ok := m.stock[item.ProductID]; !ok {
			return transfer.ErrUnknownProduct
		}
	}

	m.nextID++
	t.ID = m.nextID

	cp := *t
	m.transfers[t.ID] = &cp
	m.byCode[t.TransferID] = t.ID

	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id int64, status transfer.Status) error {
	t, ok := m.transfers[id]
	if !ok {
		return transfer.ErrNotFound
	}

	if t.Status.Terminal() {
		return transfer.ErrInvalidTransition
	}

	t.Status = status

	return nil
}

func (m *memRepo) StockLevels(_ context.Context, ids []int64) (map[int64]transfer.StockLevel, error) {
	levels := map[int64]transfer.StockLevel{}

	for _, id := range ids {
		if qty, ok := m.stock[id]; ok {
			levels[id] = transfer.StockLevel{ProductID: id, Name: m.names[id], Quantity: qty}
		}
	}

	return levels, nil
}

func (m *memRepo) BeginReconcile(ctx context.Context, id int64) (transfer.ReconcileTx, error) {
	t, err := m.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	return &memTx{repo: m, transfer: t, stock: maps.Clone(m.stock), status: t.Status}, nil
}

type memTx struct {
	repo     *memRepo
	transfer *transfer.Transfer
	stock    map[int64]int
	status   transfer.Status
	done     bool
}

func (tx *memTx) Transfer() *transfer.Transfer { return tx.transfer }

func (tx *memTx) DecrementStock(_ context.Context, productID int64, quantity int) (bool, error) {
	qty, ok := tx.stock[productID]
	if !ok || qty < quantity {
		return false, nil
	}

	tx.stock[productID] = qty - quantity

	return true, nil
}

func (tx *memTx) IncrementStock(_ context.Context, productID int64, quantity int) (bool, error) {
	if _, ok := tx.stock[productID]; !ok {
		return false, nil
	}

	tx.stock[productID] += quantity

	return true, nil
}

func (tx *memTx) StockLevel(_ context.Context, productID int64) (*transfer.StockLevel, error) {
	qty, ok := tx.stock[productID]
	if !ok {
		return nil, nil
	}

	return &transfer.StockLevel{ProductID: productID, Name: tx.repo.names[productID], Quantity: qty}, nil
}

func (tx *memTx) SwapStatus(_ context.Context, from, to transfer.Status) (bool, error) {
	if tx.status != from {
		return false, nil
	}

	tx.status = to

	return true, nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return errors.New("transaction already closed")
	}

	tx.done = true
	tx.repo.stock = tx.stock
	tx.repo.transfers[tx.transfer.ID].Status = tx.status

	return nil
}

func (tx *memTx) Rollback() error {
	tx.done = true
	return nil
}

type reconcileContext struct {
	repo       *memRepo
	svc        *transfer.Service
	results    []*transfer.ReconcileResult
	shortfalls []transfer.StockShortfall
	err        error
}

type reconcileContextKey struct{}

func scenario(ctx context.Context) *reconcileContext {
	return ctx.Value(reconcileContextKey{}).(*reconcileContext)
}

func productHasUnits(ctx context.Context, id int64, name string, qty int) error {
	rc := scenario(ctx)
	rc.repo.stock[id] = qty
	rc.repo.names[id] = name

	return nil
}

// itemRows reads a | product | quantity | table.
func itemRows(table *godog.Table) ([]transfer.ItemParams, error) {
	var items []transfer.ItemParams

	for _, row := range table.Rows[1:] {
		productID, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return nil, err
		}

		qty, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return nil, err
		}

		items = append(items, transfer.ItemParams{ProductID: productID, Quantity: qty})
	}

	return items, nil
}

func aPendingTransferWithItems(ctx context.Context, typ, code string, table *godog.Table) error {
	rc := scenario(ctx)

	items, err := itemRows(table)
	if err != nil {
		return err
	}

	params := transfer.CreateParams{
		TransferID:    code,
		FromStoreID:   1,
		ToStoreID:     2,
		FromStoreName: "Main Warehouse",
		ToStoreName:   "Downtown",
		Type:          transfer.Type(typ),
		Items:         items,
	}

	_, err = rc.svc.Create(ctx, params)

	return err
}

func iValidateItems(ctx context.Context, table *godog.Table) error {
	rc := scenario(ctx)

	items, err := itemRows(table)
	if err != nil {
		return err
	}

	requests := make([]transfer.StockRequest, len(items))
	for i, it := range items {
		requests[i] = transfer.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	rc.shortfalls, err = rc.svc.ValidateStock(ctx, requests)

	return err
}

func noShortfallIsReported(ctx context.Context) error {
	if sf := scenario(ctx).shortfalls; len(sf) != 0 {
		return fmt.Errorf("expected no shortfall, got %+v", sf)
	}

	return nil
}

func aShortfallIsReported(ctx context.Context, id int64, requested, available int) error {
	sf := scenario(ctx).shortfalls
	if len(sf) != 1 {
		return fmt.Errorf("expected one shortfall, got %+v", sf)
	}

	if sf[0].ProductID != id || sf[0].Requested != requested || sf[0].Available != available {
		return fmt.Errorf("unexpected shortfall %+v", sf[0])
	}

	return nil
}

func iSetTheStatus(ctx context.Context, code, status string) error {
	rc := scenario(ctx)

	id, ok := rc.repo.byCode[code]
	if !ok {
		return fmt.Errorf("no transfer %q", code)
	}

	rc.err = rc.svc.UpdateStatus(ctx, id, transfer.Status(status))

	return nil
}

func iActOnTransfer(ctx context.Context, action, code string) error {
	rc := scenario(ctx)

	id, ok := rc.repo.byCode[code]
	if !ok {
		return fmt.Errorf("no transfer %q", code)
	}

	res, err := rc.svc.Reconcile(ctx, id, transfer.Action(action))
	rc.err = err

	if res != nil {
		rc.results = append(rc.results, res)
	}

	return nil
}

func theRequestSucceeds(ctx context.Context) error {
	if err := scenario(ctx).err; err != nil {
		return fmt.Errorf("expected success, got %w", err)
	}

	return nil
}

func productHasStock(ctx context.Context, id int64, want int) error {
	if got := scenario(ctx).repo.stock[id]; got != want {
		return fmt.Errorf("product %d: expected %d units, got %d", id, want, got)
	}

	return nil
}

func transferIs(ctx context.Context, code, want string) error {
	rc := scenario(ctx)

	t := rc.repo.transfers[rc.repo.byCode[code]]
	if t == nil {
		return fmt.Errorf("no transfer %q", code)
	}

	if string(t.Status) != want {
		return fmt.Errorf("transfer %s: expected %q, got %q", code, want, t.Status)
	}

	return nil
}

func failsWithInsufficientStock(ctx context.Context, id int64, available int) error {
	var stockErr *transfer.InsufficientStockError
	if !errors.As(scenario(ctx).err, &stockErr) {
		return fmt.Errorf("expected insufficient stock error, got %v", scenario(ctx).err)
	}

	sf := stockErr.Shortfalls[0]
	if sf.ProductID != id || sf.Available != available {
		return fmt.Errorf("unexpected shortfall %+v", sf)
	}

	return nil
}

func failsAsInvalidTransition(ctx context.Context) error {
	if !errors.Is(scenario(ctx).err, transfer.ErrInvalidTransition) {
		return fmt.Errorf("expected invalid transition, got %v", scenario(ctx).err)
	}

	return nil
}

func resultIsAlreadyProcessed(ctx context.Context) error {
	rc := scenario(ctx)
	if rc.err != nil {
		return rc.err
	}

	if len(rc.results) == 0 || !rc.results[len(rc.results)-1].AlreadyProcessed {
		return errors.New("expected the last result to be marked already processed")
	}

	return nil
}

func InitializeReconcileScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		repo := newMemRepo()
		rc := &reconcileContext{repo: repo, svc: transfer.NewService(repo, nil)}

		return context.WithValue(ctx, reconcileContextKey{}, rc), nil
	})

	ctx.Step(`^product (\d+) "([^"]*)" has (\d+) units in stock$`, productHasUnits)
	ctx.Step(`^a pending "([^"]*)" transfer "([^"]*)" with items:$`, aPendingTransferWithItems)
	ctx.Step(`^I (complete|cancel) transfer "([^"]*)"$`, iActOnTransfer)
	ctx.Step(`^the request succeeds$`, theRequestSucceeds)
	ctx.Step(`^product (\d+) has (\d+) units in stock$`, productHasStock)
	ctx.Step(`^transfer "([^"]*)" is "([^"]*)"$`, transferIs)
	ctx.Step(`^the request fails with insufficient stock for product (\d+) with (\d+) available$`, failsWithInsufficientStock)
	ctx.Step(`^the request fails as an invalid transition$`, failsAsInvalidTransition)
	ctx.Step(`^the result is marked already processed$`, resultIsAlreadyProcessed)
	ctx.Step(`^I validate items:$`, iValidateItems)
	ctx.Step(`^no stock shortfall is reported$`, noShortfallIsReported)
	ctx.Step(`^a shortfall is reported for product (\d+) requesting (\d+) with (\d+) available$`, aShortfallIsReported)
	ctx.Step(`^I set the status of transfer "([^"]*)" to "([^"]*)"$`, iSetTheStatus)
}

func TestReconcileFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeReconcileScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/reconcile.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
