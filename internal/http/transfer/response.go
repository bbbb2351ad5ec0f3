package transfer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexustechhub/mdts/internal/transfer"
)

type itemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	GST       decimal.Decimal `json:"gst"`
}

type transferResponse struct {
	ID              int64           `json:"id"`
	TransferID      string          `json:"transfer_id"`
	Status          transfer.Status `json:"status"`
	CreatedBy       string          `json:"created_by"`
	FromStoreID     int64           `json:"from_store_id"`
	ToStoreID       int64           `json:"to_store_id"`
	FromStoreName   string          `json:"from_store_name"`
	ToStoreName     string          `json:"to_store_name"`
	Type            transfer.Type   `json:"type"`
	TransactionDate time.Time       `json:"transaction_date"`
	Items           []itemResponse  `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type paginationResponse struct {
	TotalRecords      int  `json:"total_records"`
	TotalPages        int  `json:"total_pages"`
	CurrentPage       int  `json:"current_page"`
	PerPage           int  `json:"per_page"`
	NextPageExist     bool `json:"next_page_exist"`
	PreviousPageExist bool `json:"previous_page_exist"`
	NextPage          *int `json:"next_page"`
	PreviousPage      *int `json:"previous_page"`
}

type listResponse struct {
	Transfers  []transferResponse `json:"inventoryTransferListData"`
	Pagination paginationResponse `json:"pagination"`
}

type shortfallResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Error       string `json:"error"`
}

type insufficientStockResponse struct {
	InsufficientStock []shortfallResponse `json:"insufficientStock"`
}

type reconcileResponse struct {
	ID               int64           `json:"id"`
	TransferID       string          `json:"transfer_id"`
	Status           transfer.Status `json:"status"`
	AlreadyProcessed bool            `json:"already_processed"`
}

func toResponse(t *transfer.Transfer) transferResponse {
	items := make([]itemResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = itemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			Price:     it.Price,
			GST:       it.GST,
		}
	}

	return transferResponse{
		ID:              t.ID,
		TransferID:      t.TransferID,
		Status:          t.Status,
		CreatedBy:       t.CreatedBy,
		FromStoreID:     t.FromStoreID,
		ToStoreID:       t.ToStoreID,
		FromStoreName:   t.FromStoreName,
		ToStoreName:     t.ToStoreName,
		Type:            t.Type,
		TransactionDate: t.TransactionDate,
		Items:           items,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func toListResponse(res *transfer.ListResult) listResponse {
	transfers := make([]transferResponse, len(res.Transfers))
	for i, t := range res.Transfers {
		transfers[i] = toResponse(t)
	}

	p := res.Pagination

	return listResponse{
		Transfers: transfers,
		Pagination: paginationResponse{
			TotalRecords:      p.TotalRecords,
			TotalPages:        p.TotalPages,
			CurrentPage:       p.CurrentPage,
			PerPage:           p.PerPage,
			NextPageExist:     p.NextPageExist,
			PreviousPageExist: p.PreviousPageExist,
			NextPage:          p.NextPage,
			PreviousPage:      p.PreviousPage,
		},
	}
}

func toShortfalls(shortfalls []transfer.StockShortfall) []shortfallResponse {
	resp := make([]shortfallResponse, len(shortfalls))
	for i, s := range shortfalls {
		resp[i] = shortfallResponse{
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			SKU:         s.SKU,
			Requested:   s.Requested,
			Available:   s.Available,
			Error:       s.Error,
		}
	}

	return resp
}
