package query

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Prev       *PageRef `json:"prev,omitempty"`
	Next       *PageRef `json:"next,omitempty"`
	TotalPages int      `json:"totalPages"`
}

// NewPagination: prev есть, если страница не первая; next — если после текущей страницы остались записи.
func NewPagination(page, limit int, total int64) Pagination {
	var p Pagination
	if limit <= 0 {
		return p
	}
	if page > 1 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	if int64(page)*int64(limit) < total {
		p.Next = &PageRef{Page: page + 1, Limit: limit}
	}
	p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	return p
}

// Result — страница списка вместе с метаданными для конверта ответа.
type Result struct {
	Data       any
	Count      int
	Total      int64
	Pagination Pagination
}

func NewResult(data any, count int, total int64, q ListQuery) Result {
	return Result{
		Data:       data,
		Count:      count,
		Total:      total,
		Pagination: NewPagination(q.Page, q.Limit, total),
	}
}
