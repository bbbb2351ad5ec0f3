package product

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/nexustechhub/mdts/internal/encoding"
)

const (
	colSKU   = "sku"
	colName  = "name"
	colPrice = "price"
	colStock = "stock_quantity"
)

var requiredCols = []string{colSKU, colName, colPrice, colStock}

var ErrNoHeader = errors.New("no header row found: expected columns sku, name, price, stock_quantity")

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

// separators are tried in order; a file uses the one whose header row comes first.
var separators = []rune{',', ';'}

// ParseCSV reads a stock import file. Leading preamble lines are skipped until a
// row carrying every required column is found. Lines that fail to parse are
// returned as RowErrors; the rest are returned in file order.
func ParseCSV(r io.Reader) ([]Row, []RowError, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	var (
		best     *table
		firstErr error
	)

	for _, sep := range separators {
		t, err := readTable(data, sep)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		if t.headerIdx < 0 {
			continue
		}

		if best == nil || t.lines[t.headerIdx] < best.lines[best.headerIdx] {
			best = t
		}
	}

	if best == nil {
		if firstErr != nil {
			return nil, nil, firstErr
		}

		return nil, nil, ErrNoHeader
	}

	var (
		rows    []Row
		rowErrs []RowError
	)

	for i := best.headerIdx + 1; i < len(best.records); i++ {
		if blank(best.records[i]) {
			continue
		}

		row, err := parseRow(best.cols, best.records[i])
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: best.lines[i], Reason: err.Error()})
			continue
		}

		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

// table is a file split with one separator. headerIdx is -1 when no record
// carries every required column.
type table struct {
	records   [][]string
	lines     []int
	cols      colIndex
	headerIdx int
}

func readTable(data []byte, sep rune) (*table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	t := &table{headerIdx: -1}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		t.records = append(t.records, record)
		t.lines = append(t.lines, line)
	}

	if cols, idx, ok := detectHeader(t.records); ok {
		t.cols = cols
		t.headerIdx = idx
	}

	return t, nil
}

func detectHeader(records [][]string) (colIndex, int, bool) {
	for rowIdx, record := range records {
		cols := make(colIndex)

		for i, cell := range record {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		if hasAll(cols, requiredCols) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func hasAll(cols colIndex, names []string) bool {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRow(cols colIndex, record []string) (Row, error) {
	row := Row{
		SKU:  cellValue(record, cols[colSKU]),
		Name: cellValue(record, cols[colName]),
	}

	if row.SKU == "" {
		return Row{}, errors.New("missing sku")
	}

	if row.Name == "" {
		return Row{}, errors.New("missing name")
	}

	price, err := parsePrice(cellValue(record, cols[colPrice]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid price: %w", err)
	}

	if price.IsNegative() {
		return Row{}, errors.New("price must not be negative")
	}

	qty, err := strconv.Atoi(cellValue(record, cols[colStock]))
	if err != nil {
		return Row{}, fmt.Errorf("invalid stock_quantity: %w", err)
	}

	if qty < 0 {
		return Row{}, errors.New("stock_quantity must not be negative")
	}

	row.Price = price
	row.StockQuantity = qty

	return row, nil
}

// parsePrice accepts "1234.56" as well as the comma-decimal "1.234,56".
func parsePrice(s string) (decimal.Decimal, error) {
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return decimal.NewFromString(s)
}

func cellValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
