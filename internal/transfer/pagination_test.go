package transfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexustechhub/mdts/internal/transfer"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      transfer.Page
		wantPages int
		wantNext  *int
		wantPrev  *int
	}{
		{name: "Empty", total: 0, page: transfer.Page{Number: 1, Size: 10}, wantPages: 0},
		{name: "SinglePage", total: 7, page: transfer.Page{Number: 1, Size: 10}, wantPages: 1},
		{name: "FirstOfMany", total: 25, page: transfer.Page{Number: 1, Size: 10}, wantPages: 3, wantNext: new(2)},
		{name: "Middle", total: 25, page: transfer.Page{Number: 2, Size: 10}, wantPages: 3, wantNext: new(3), wantPrev: new(1)},
		{name: "Last", total: 25, page: transfer.Page{Number: 3, Size: 10}, wantPages: 3, wantPrev: new(2)},
		{name: "ExactMultiple", total: 20, page: transfer.Page{Number: 2, Size: 10}, wantPages: 2, wantPrev: new(1)},
		{name: "BeyondLast", total: 5, page: transfer.Page{Number: 4, Size: 10}, wantPages: 1, wantPrev: new(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transfer.NewPagination(tt.total, tt.page)

			assert.Equal(t, tt.total, got.TotalRecords)
			assert.Equal(t, tt.wantPages, got.TotalPages)
			assert.Equal(t, tt.page.Number, got.CurrentPage)
			assert.Equal(t, tt.page.Size, got.PerPage)
			assert.Equal(t, tt.wantNext, got.NextPage)
			assert.Equal(t, tt.wantPrev, got.PreviousPage)
			assert.Equal(t, tt.wantNext != nil, got.NextPageExist)
			assert.Equal(t, tt.wantPrev != nil, got.PreviousPageExist)
		})
	}
}

func TestPage_Offset(t *testing.T) {
	assert.Equal(t, 0, transfer.Page{Number: 1, Size: 10}.Offset())
	assert.Equal(t, 20, transfer.Page{Number: 3, Size: 10}.Offset())
}
