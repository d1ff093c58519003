package records

// DefaultPerPage is the fixed listing page size.
const DefaultPerPage = 20

type Pagination struct {
	TotalRecords int64 `json:"total_records"`
	TotalPages   int   `json:"total_pages"`
	CurrentPage  int   `json:"current_page"`
	PerPage      int   `json:"per_page"`
	Offset       int   `json:"-"`
}

// Paginate clamps a 1-indexed page number to [1, total pages] and derives
// the query offset. With zero records the current page is still 1.
func Paginate(totalRecords int64, perPage, page int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	totalPages := int((totalRecords + int64(perPage) - 1) / int64(perPage))

	current := page
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}

	return Pagination{
		TotalRecords: totalRecords,
		TotalPages:   totalPages,
		CurrentPage:  current,
		PerPage:      perPage,
		Offset:       (current - 1) * perPage,
	}
}
