package store

import (
	"fmt"
	"strings"

	"github.com/nexustechhub/mdts/internal/transfer"
)

// predicates accumulates parameterised WHERE clauses. Each clause carries a single
// %d verb that is replaced by its placeholder index.
type predicates struct {
	clauses []string
	args    []any
}

func (p *predicates) add(clause string, arg any) {
	p.args = append(p.args, arg)
	p.clauses = append(p.clauses, fmt.Sprintf(clause, len(p.args)))
}

func (p *predicates) where() string {
	if len(p.clauses) == 0 {
		return ""
	}

	return " WHERE " + strings.Join(p.clauses, " AND ")
}

// buildFilter turns the filters that are set into a WHERE clause and its arguments.
func buildFilter(filter transfer.ListFilter) (string, []any) {
	var p predicates

	if filter.TransferID != nil {
		p.add("t.transfer_id = $%d", *filter.TransferID)
	}

	if filter.FromStoreID != nil {
		p.add("t.from_store_id = $%d", *filter.FromStoreID)
	}

	if filter.ToStoreID != nil {
		p.add("t.to_store_id = $%d", *filter.ToStoreID)
	}

	if filter.Status != nil {
		p.add("t.status = $%d", *filter.Status)
	}

	if filter.FromDate != nil {
		p.add("t.transaction_date >= $%d", *filter.FromDate)
	}

	if filter.ToDate != nil {
		p.add("t.transaction_date < $%d", filter.ToDate.AddDate(0, 0, 1))
	}

	return p.where(), p.args
}
