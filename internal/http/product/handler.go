package product

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nexustechhub/mdts/internal/http/respond"
	"github.com/nexustechhub/mdts/internal/product"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *product.Service
}

func NewHandler(svc *product.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/import", h.importCSV)
}

type productResponse struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImportBatchID *uuid.UUID      `json:"import_batch_id"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type rowErrorResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type importResponse struct {
	BatchID  uuid.UUID          `json:"batch_id"`
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
	Errors   []rowErrorResponse `json:"errors"`
}

func toResponse(p *product.Product) productResponse {
	return productResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImportBatchID: p.ImportBatchID,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toResponse(p)
	}

	respond.JSON(w, http.StatusOK, "Products retrieved successfully", resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Product not found")
			return
		}

		respond.Internal(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, "Product retrieved successfully", toResponse(p))
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), file)
	if err != nil {
		if errors.Is(err, product.ErrNoHeader) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		respond.Internal(w, r, err)

		return
	}

	rowErrs := make([]rowErrorResponse, len(res.Errors))
	for i, e := range res.Errors {
		rowErrs[i] = rowErrorResponse{Line: e.Line, Reason: e.Reason}
	}

	respond.JSON(w, http.StatusCreated, "Product stock imported", importResponse{
		BatchID:  res.BatchID,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Errors:   rowErrs,
	})
}
