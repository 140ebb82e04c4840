package collectioncache

// Pagination is a page request. TotalEntries overrides the computed total.
type Pagination struct {
	Page         int
	PerPage      int
	TotalEntries *int
}

// Offset is the index of the first element on the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Page is one window over a collection.
type Page struct {
	Records      []Record
	CurrentPage  int
	PerPage      int
	TotalEntries int
}

// TotalPages is the number of pages needed for TotalEntries.
func (p *Page) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.TotalEntries + p.PerPage - 1) / p.PerPage
}

// Replace swaps the page contents while keeping its position and totals.
func (p *Page) Replace(records []Record) {
	p.Records = records
}

// NewPage builds the page metadata for a request over total elements.
func NewPage(p Pagination, total int) *Page {
	if p.TotalEntries != nil {
		total = *p.TotalEntries
	}
	return &Page{CurrentPage: p.Page, PerPage: p.PerPage, TotalEntries: total}
}

// paginate cuts the requested page out of items.
func paginate[T any](items []T, p Pagination) ([]T, *Page) {
	start, end := clampWindow(len(items), p.Offset(), p.PerPage)
	return items[start:end], NewPage(p, len(items))
}

// window cuts offset/limit out of items. A nil limit runs to the end.
func window[T any](items []T, offset, limit *int) []T {
	off := 0
	if offset != nil {
		off = *offset
	}
	n := len(items)
	if limit != nil {
		n = *limit
	}
	start, end := clampWindow(len(items), off, n)
	return items[start:end]
}

func clampWindow(length, offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if offset > length {
		offset = length
	}
	end := offset + limit
	if end > length || end < offset {
		end = length
	}
	return offset, end
}
