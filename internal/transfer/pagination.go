package transfer

// Page selects a 1-based page of results.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	TotalRecords      int
	TotalPages        int
	CurrentPage       int
	PerPage           int
	NextPageExist     bool
	PreviousPageExist bool
	NextPage          *int
	PreviousPage      *int
}

// NewPagination computes page metadata for total matching records.
func NewPagination(total int, p Page) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}

	pg := Pagination{
		TotalRecords:      total,
		TotalPages:        pages,
		CurrentPage:       p.Number,
		PerPage:           p.Size,
		NextPageExist:     p.Number < pages,
		PreviousPageExist: p.Number > 1,
	}

	if pg.NextPageExist {
		pg.NextPage = new(p.Number + 1)
	}

	if pg.PreviousPageExist {
		pg.PreviousPage = new(p.Number - 1)
	}

	return pg
}
