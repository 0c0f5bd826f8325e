// Package feed pages a fixed list of entries for display.
package feed

// DefaultPerPage is the page size of the wishes feed
const DefaultPerPage = 4

// Paginator tracks the current page of a fixed list. Pages are 1-based.
type Paginator[T any] struct {
	items   []T
	perPage int
	page    int
}

// New creates a paginator on page 1. A page size below one is treated as one.
func New[T any](items []T, perPage int) *Paginator[T] {
	if perPage < 1 {
		perPage = 1
	}
	return &Paginator[T]{
		items:   append([]T(nil), items...),
		perPage: perPage,
		page:    1,
	}
}

// TotalPages is never below one, even for an empty list
func (p *Paginator[T]) TotalPages() int {
	n := (len(p.items) + p.perPage - 1) / p.perPage
	if n < 1 {
		return 1
	}
	return n
}

// Page returns the current 1-based page
func (p *Paginator[T]) Page() int {
	return p.page
}

// PerPage returns the page size
func (p *Paginator[T]) PerPage() int {
	return p.perPage
}

// Total returns the number of entries
func (p *Paginator[T]) Total() int {
	return len(p.items)
}

// GoTo moves to page, clamped into [1, TotalPages]
func (p *Paginator[T]) GoTo(page int) int {
	if page < 1 {
		page = 1
	}
	if last := p.TotalPages(); page > last {
		page = last
	}
	p.page = page
	return p.page
}

// Next moves one page forward, staying on the last page
func (p *Paginator[T]) Next() int {
	return p.GoTo(p.page + 1)
}

// Prev moves one page back, staying on the first page
func (p *Paginator[T]) Prev() int {
	return p.GoTo(p.page - 1)
}

// HasPrev reports whether the previous control is enabled
func (p *Paginator[T]) HasPrev() bool {
	return p.page > 1
}

// HasNext reports whether the next control is enabled
func (p *Paginator[T]) HasNext() bool {
	return p.page < p.TotalPages()
}

// CurrentItems returns the entries of the current page in list order
func (p *Paginator[T]) CurrentItems() []T {
	start := (p.page - 1) * p.perPage
	if start >= len(p.items) {
		return []T{}
	}
	end := min(start+p.perPage, len(p.items))
	return append([]T(nil), p.items[start:end]...)
}

// Control is one numbered page button
type Control struct {
	Page    int  `json:"page"`
	Current bool `json:"current"`
}

// Controls is the render projection of the pager
type Controls struct {
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	HasPrev    bool      `json:"has_prev"`
	HasNext    bool      `json:"has_next"`
	Pages      []Control `json:"pages"`
}

// Controls renders the pager state
func (p *Paginator[T]) Controls() Controls {
	total := p.TotalPages()
	c := Controls{
		Page:       p.page,
		PerPage:    p.perPage,
		Total:      len(p.items),
		TotalPages: total,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		Pages:      make([]Control, total),
	}
	for i := range c.Pages {
		c.Pages[i] = Control{Page: i + 1, Current: i+1 == p.page}
	}
	return c
}
