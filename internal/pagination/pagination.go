package pagination

import (
	"math"

	"gorm.io/gorm"
)

// DefaultPageSize is the number of rows per page on list screens.
const DefaultPageSize = 20

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Defaults fills in default values and clamps out-of-range input. A list
// page never fails on a bad page number; it falls back to the first page.
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = DefaultPageSize
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse wraps a paginated list of items with metadata.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPageResponse creates a PageResponse from the given data and total count.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	totalPages := int(math.Ceil(float64(totalItems) / float64(pageSize)))
	if totalPages == 0 {
		totalPages = 1
	}
	if data == nil {
		data = []T{}
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether a previous page exists.
func (p PageResponse[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p PageResponse[T]) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p PageResponse[T]) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p PageResponse[T]) NextPage() int { return p.Page + 1 }

// Clamp moves a request past the last page back onto the last page, the
// way a list view shows the final page for an out-of-range page number.
func Clamp(req PageRequest, totalItems int64) PageRequest {
	req.Defaults()
	last := int(math.Ceil(float64(totalItems) / float64(req.PageSize)))
	if last < 1 {
		last = 1
	}
	if req.Page > last {
		req.Page = last
	}
	return req
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
