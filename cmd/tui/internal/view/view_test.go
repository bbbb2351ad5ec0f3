package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexustechhub/mdts/internal/location"
	"github.com/nexustechhub/mdts/internal/product"
	"github.com/nexustechhub/mdts/internal/transfer"
)

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func TestPeriod_Range(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 30, 0, 0, time.UTC) // Thursday

	tests := []struct {
		period   Period
		from, to string
	}{
		{PeriodToday, "2026-10-15", "2026-10-15"},
		{PeriodThisWeek, "2026-10-12", "2026-10-15"},
		{PeriodThisMonth, "2026-10-01", "2026-10-15"},
		{PeriodLastMonth, "2026-09-01", "2026-09-30"},
	}

	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			from, to := tt.period.Range(now)
			require.NotNil(t, from)
			require.NotNil(t, to)
			assert.Equal(t, day(tt.from), *from)
			assert.Equal(t, day(tt.to), *to)
		})
	}

	t.Run("All Time is unbounded", func(t *testing.T) {
		from, to := PeriodAll.Range(now)
		assert.Nil(t, from)
		assert.Nil(t, to)
	})
}

func TestPeriod_RangeOnSunday(t *testing.T) {
	from, to := PeriodThisWeek.Range(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, day("2026-10-12"), *from)
	assert.Equal(t, day("2026-10-18"), *to)
}

func TestParseCustomRange(t *testing.T) {
	from, to, err := parseCustomRange("2026-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, day("2026-01-01"), *from)
	assert.Nil(t, to)

	_, _, err = parseCustomRange("2026-02-01", "2026-01-01")
	assert.EqualError(t, err, "to date is before from date")

	_, _, err = parseCustomRange("01/02/2026", "")
	assert.Error(t, err)
}

func TestParseItemLines(t *testing.T) {
	bySKU := map[string]*product.Product{
		"CAB-1": {ID: 7, SKU: "CAB-1", Price: decimal.RequireFromString("3.50")},
		"SCR-9": {ID: 8, SKU: "SCR-9", Price: decimal.RequireFromString("19.99")},
	}

	t.Run("valid lines", func(t *testing.T) {
		items, err := parseItemLines("cab-1 2\n\n  SCR-9   10  \n", bySKU)
		require.NoError(t, err)

		require.Len(t, items, 2)
		assert.Equal(t, int64(7), items[0].ProductID)
		assert.Equal(t, 2, items[0].Quantity)
		assert.True(t, items[0].Price.Equal(decimal.RequireFromString("3.50")))
		assert.Equal(t, int64(8), items[1].ProductID)
		assert.Equal(t, 10, items[1].Quantity)
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "  \n", "at least one item is required"},
		{"missing quantity", "CAB-1", "line 1: expected SKU QUANTITY"},
		{"unknown sku", "CAB-1 1\nXYZ 2", `line 2: unknown SKU "XYZ"`},
		{"zero quantity", "CAB-1 0", "line 1: quantity must be a positive integer"},
		{"non numeric quantity", "CAB-1 two", "line 1: quantity must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseItemLines(tt.input, bySKU)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestStockEffect(t *testing.T) {
	items := []transfer.Item{{ProductID: 7, Quantity: 1}}

	out := &transfer.Transfer{Type: transfer.TypeOut, Status: transfer.StatusPending, Items: items}
	in := &transfer.Transfer{Type: transfer.TypeIn, Status: transfer.StatusCompleted, Items: items}

	assert.Equal(t, "Removes stock for 1 item(s).", stockEffect(out, transfer.ActionComplete))
	assert.Equal(t, "Stock is not changed.", stockEffect(out, transfer.ActionCancel))
	assert.Equal(t, "Removes stock for 1 item(s).", stockEffect(in, transfer.ActionCancel))
}

func TestCreateModel_LoadRefs(t *testing.T) {
	m := NewCreateModel(nil, nil, nil)

	updated, _ := m.Update(loadRefsMsg{
		products: []*product.Product{{ID: 7, SKU: "ip13-scr", Name: "iPhone 13 Screen"}},
		locations: []*location.Location{
			{ID: 1, Name: "Main Warehouse"},
			{ID: 2, Name: "Downtown"},
			{ID: 3, Name: "Airport"},
		},
	})

	cm, ok := updated.(CreateModel)
	require.True(t, ok)

	assert.Equal(t, createStateForm, cm.state)
	assert.Len(t, cm.stores, 3)
	assert.Equal(t, int64(1), cm.draft.from)
	assert.Equal(t, int64(2), cm.draft.to)
	assert.Contains(t, cm.bySKU, "IP13-SCR")
	assert.NotNil(t, cm.form)
}

func TestCreateModel_LoadRefsNeedsTwoStores(t *testing.T) {
	m := NewCreateModel(nil, nil, nil)

	updated, _ := m.Update(loadRefsMsg{
		locations: []*location.Location{{ID: 1, Name: "Main Warehouse"}},
	})

	cm, ok := updated.(CreateModel)
	require.True(t, ok)

	assert.Equal(t, createStateResult, cm.state)
	assert.Error(t, cm.err)
}
