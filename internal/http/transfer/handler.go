package transfer

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nexustechhub/mdts/internal/http/auth"
	"github.com/nexustechhub/mdts/internal/http/request"
	"github.com/nexustechhub/mdts/internal/http/respond"
	"github.com/nexustechhub/mdts/internal/transfer"
)

type Handler struct {
	svc            *transfer.Service
	defaultPerPage int
	maxPerPage     int
}

func NewHandler(svc *transfer.Service, defaultPerPage, maxPerPage int) *Handler {
	return &Handler{svc: svc, defaultPerPage: defaultPerPage, maxPerPage: maxPerPage}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/", h.reconcile)
	r.Post("/validate-stock", h.validateStock)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, page, err := h.parseListQuery(r)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Inventory transfers retrieved successfully", toListResponse(res))
}

func (h *Handler) parseListQuery(r *http.Request) (transfer.ListFilter, transfer.Page, error) {
	q := r.URL.Query()
	filter := transfer.ListFilter{}
	page := transfer.Page{Number: 1, Size: h.defaultPerPage}

	if s := q.Get("id"); s != "" {
		filter.TransferID = new(s)
	}

	if s := q.Get("from_store"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filter, page, errors.New("from_store must be an integer")
		}

		filter.FromStoreID = new(id)
	}

	if s := q.Get("to_store"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filter, page, errors.New("to_store must be an integer")
		}

		filter.ToStoreID = new(id)
	}

	if s := q.Get("status"); s != "" {
		filter.Status = new(transfer.Status(s))
	}

	if s := q.Get("from_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, page, errors.New("from_date must use the YYYY-MM-DD format")
		}

		filter.FromDate = new(t)
	}

	if s := q.Get("to_date"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return filter, page, errors.New("to_date must use the YYYY-MM-DD format")
		}

		filter.ToDate = new(t)
	}

	if s := q.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return filter, page, errors.New("page must be a positive integer")
		}

		page.Number = n
	}

	if s := q.Get("per_page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > h.maxPerPage {
			return filter, page, fmt.Errorf("per_page must be between 1 and %d", h.maxPerPage)
		}

		page.Size = n
	}

	return filter, page, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Inventory transfer retrieved successfully", toResponse(t))
}

type itemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	GST       decimal.Decimal `json:"gst"`
}

type createRequest struct {
	TransferID      string          `json:"transfer_id"`
	Status          transfer.Status `json:"status"`
	CreatedBy       string          `json:"created_by"`
	FromStoreID     int64           `json:"from_store_id"`
	ToStoreID       int64           `json:"to_store_id"`
	FromStoreName   string          `json:"from_store_name"`
	ToStoreName     string          `json:"to_store_name"`
	Type            transfer.Type   `json:"type"`
	TransactionDate *time.Time      `json:"transaction_date"`
	Items           []itemRequest   `json:"items"`
	ValidateStock   *bool           `json:"validate_stock"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params := transfer.CreateParams{
		TransferID:    req.TransferID,
		Status:        req.Status,
		CreatedBy:     req.CreatedBy,
		FromStoreID:   req.FromStoreID,
		ToStoreID:     req.ToStoreID,
		FromStoreName: req.FromStoreName,
		ToStoreName:   req.ToStoreName,
		Type:          req.Type,
		Items:         make([]transfer.ItemParams, len(req.Items)),
		CheckStock:    req.ValidateStock == nil || *req.ValidateStock,
	}

	if params.CreatedBy == "" {
		params.CreatedBy = auth.Subject(r.Context())
	}

	if req.TransactionDate != nil {
		params.TransactionDate = *req.TransactionDate
	}

	for i, it := range req.Items {
		params.Items[i] = transfer.ItemParams{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			GST:       it.GST,
		}
	}

	t, err := h.svc.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, "Inventory transfer created successfully", toResponse(t))
}

type reconcileRequest struct {
	TransferID int64           `json:"transfer_id" validate:"gt=0"`
	Action     transfer.Action `json:"action"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Reconcile(r.Context(), req.TransferID, req.Action)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := fmt.Sprintf("Transfer %s marked as %s", res.TransferID, res.Status)
	if res.AlreadyProcessed {
		msg = fmt.Sprintf("Transfer %s is already %s", res.TransferID, res.Status)
	}

	respond.JSON(w, http.StatusOK, msg, reconcileResponse{
		ID:               res.ID,
		TransferID:       res.TransferID,
		Status:           res.Status,
		AlreadyProcessed: res.AlreadyProcessed,
	})
}

type updateStatusRequest struct {
	Status transfer.Status `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, "Inventory transfer status updated successfully", map[string]any{
		"id":     id,
		"status": req.Status,
	})
}

type stockRequestItem struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type validateStockRequest struct {
	Items []stockRequestItem `json:"items" validate:"min=1,dive"`
}

type validateStockResponse struct {
	Valid             bool                `json:"valid"`
	InsufficientStock []shortfallResponse `json:"insufficientStock"`
}

func (h *Handler) validateStock(w http.ResponseWriter, r *http.Request) {
	var req validateStockRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	requests := make([]transfer.StockRequest, len(req.Items))
	for i, it := range req.Items {
		requests[i] = transfer.StockRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	shortfalls, err := h.svc.ValidateStock(r.Context(), requests)
	if err != nil {
		writeError(w, r, err)
		return
	}

	msg := "Stock is sufficient for all items"
	if len(shortfalls) > 0 {
		msg = "Insufficient stock for one or more items"
	}

	respond.JSON(w, http.StatusOK, msg, validateStockResponse{
		Valid:             len(shortfalls) == 0,
		InsufficientStock: toShortfalls(shortfalls),
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}

	return id, true
}

// writeError maps domain errors to status codes. Anything unrecognised is a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr     *transfer.ValidationError
		stockErr *transfer.InsufficientStockError
	)

	switch {
	case errors.As(err, &vErr):
		respond.Error(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &stockErr):
		respond.JSON(w, http.StatusBadRequest, "Insufficient stock for one or more items", insufficientStockResponse{
			InsufficientStock: toShortfalls(stockErr.Shortfalls),
		})
	case errors.Is(err, transfer.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Inventory transfer not found")
	case errors.Is(err, transfer.ErrDuplicateTransferID):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, transfer.ErrInvalidTransition):
		respond.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, transfer.ErrUnknownProduct):
		respond.Error(w, http.StatusBadRequest, err.Error())
	default:
		respond.Internal(w, r, err)
	}
}
