package types

// Page is one contiguous slice of an ordered result plus the total size of that result.
// Page numbers start at 1.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

// NormalizePage clamps page and perPage to usable values
func NormalizePage(page, perPage, defaultPerPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}

// Offset is the number of items before this page
func (p Page[T]) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasNext reports whether items exist after this page
func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.PerPage) < p.Total
}

// HasPrev reports whether this is not the first page
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// NextPage returns the next page number, or 0 when there is none
func (p Page[T]) NextPage() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

// PrevPage returns the previous page number, or 0 when there is none
func (p Page[T]) PrevPage() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

// EmptyPage returns a page with no items
func EmptyPage[T any](page, perPage int) Page[T] {
	return Page[T]{Items: []T{}, Page: page, PerPage: perPage}
}
