package chapter

// Page is a 1-based page request.
type Page struct {
	Number int `json:"page"`
	Limit  int `json:"limit"`
}

// Normalize fills in defaults and caps the limit.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Paged is one page of results plus the total available.
type Paged[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
}

// NewPaged assembles a Paged result; a nil items slice becomes empty.
func NewPaged[T any](items []T, total int, p Page) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{
		Items:   items,
		Total:   total,
		Page:    p.Number,
		Limit:   p.Limit,
		HasMore: p.Offset()+len(items) < total,
	}
}
