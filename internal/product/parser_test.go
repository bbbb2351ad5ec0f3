package product_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/nexustechhub/mdts/internal/product"
)

func TestParseCSV_Comma(t *testing.T) {
	csv := `sku,name,price,stock_quantity
IP13-SCR,iPhone 13 Screen,89.99,20
BAT-1,Battery Pack,12.50,0
`

	rows, rowErrs, err := product.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	assert.Equal(t, "IP13-SCR", rows[0].SKU)
	assert.Equal(t, "iPhone 13 Screen", rows[0].Name)
	assert.True(t, decimal.RequireFromString("89.99").Equal(rows[0].Price))
	assert.Equal(t, 20, rows[0].StockQuantity)

	assert.Equal(t, 0, rows[1].StockQuantity)
}

func TestParseCSV_SemicolonWithCommaDecimals(t *testing.T) {
	csv := `Stock export - 15-02-2026
Warehouse;Main

SKU;Name;Price;Stock_Quantity
IP13-SCR;iPhone 13 Screen;1.089,99;4
`

	rows, rowErrs, err := product.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)

	assert.True(t, decimal.RequireFromString("1089.99").Equal(rows[0].Price))
	assert.Equal(t, 4, rows[0].StockQuantity)
}

func TestParseCSV_DifferentColumnOrder(t *testing.T) {
	csv := `stock_quantity,price,ignored,name,sku
7,5.00,x,Flex Cable,FX-2
`

	rows, _, err := product.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "FX-2", rows[0].SKU)
	assert.Equal(t, "Flex Cable", rows[0].Name)
	assert.Equal(t, 7, rows[0].StockQuantity)
}

func TestParseCSV_ReportsBadRows(t *testing.T) {
	csv := `sku,name,price,stock_quantity
A-1,Good,1.00,3
A-2,Bad qty,1.00,three
,No sku,1.00,1

A-3,Negative,1.00,-2
A-4,Bad price,abc,1
A-5,Also good,2,9
`

	rows, rowErrs, err := product.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-1", rows[0].SKU)
	assert.Equal(t, "A-5", rows[1].SKU)

	require.Len(t, rowErrs, 4)
	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Reason, "stock_quantity")
	assert.Equal(t, 4, rowErrs[1].Line)
	assert.Contains(t, rowErrs[1].Reason, "sku")
	assert.Equal(t, 6, rowErrs[2].Line)
	assert.Contains(t, rowErrs[2].Reason, "negative")
	assert.Equal(t, 7, rowErrs[3].Line)
	assert.Contains(t, rowErrs[3].Reason, "price")
}

func TestParseCSV_Latin1Encoding(t *testing.T) {
	utf8CSV := "sku;name;price;stock_quantity\nCAB-1;Cabo de dados prémio;3,00;10\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	rows, _, err := product.ParseCSV(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Cabo de dados prémio", rows[0].Name)
}

func TestParseCSV_EmptyFile(t *testing.T) {
	_, _, err := product.ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, product.ErrNoHeader)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	rows, rowErrs, err := product.ParseCSV(strings.NewReader("sku,name,price,stock_quantity"))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, rowErrs)
}

func TestParseCSV_MissingColumn(t *testing.T) {
	_, _, err := product.ParseCSV(strings.NewReader("sku,name,stock_quantity\nA,B,1\n"))
	assert.ErrorIs(t, err, product.ErrNoHeader)
}

func TestParseCSV_SemicolonAfterCommaPreamble(t *testing.T) {
	csv := `Exported by stock tool, v2
Main Warehouse, Lisbon

sku;name;price;stock_quantity
IP13-SCR;iPhone 13 Screen;89,99;4
BAT-1;Battery Pack;abc;2
`

	rows, rowErrs, err := product.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "IP13-SCR", rows[0].SKU)
	assert.True(t, decimal.RequireFromString("89.99").Equal(rows[0].Price))

	require.Len(t, rowErrs, 1)
	assert.Equal(t, 6, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Reason, "price")
}

func TestParseCSV_CommaAfterSemicolonPreamble(t *testing.T) {
	csv := `Store;Downtown;Batch;7
sku,name,price,stock_quantity
FX-2,Flex Cable,5.00,7
`

	rows, rowErrs, err := product.ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)

	assert.Equal(t, "FX-2", rows[0].SKU)
	assert.Equal(t, 7, rows[0].StockQuantity)
}
