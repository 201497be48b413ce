// Package pagination pages and orders the budget and category listings.
package pagination

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ErrUnknownSort is returned for a sort key the listing does not offer.
var ErrUnknownSort = errors.New("unknown sort key")

// PageRequest holds the page and sort parameters of a listing query string.
type PageRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Sort     string `form:"sort"`
}

// Defaults fills in page 1 and the default page size.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Ordering maps the sort keys a listing accepts to ORDER BY clauses. The
// empty key is the default order. Every clause ends in a unique column so
// pages never overlap.
type Ordering map[string]string

// BudgetOrder lists budgets newest year first by default.
var BudgetOrder = Ordering{
	"":      "year DESC, name ASC, id ASC",
	"year":  "year ASC, name ASC, id ASC",
	"-year": "year DESC, name ASC, id ASC",
	"name":  "name ASC, year DESC, id ASC",
}

// CategoryOrder lists categories in their display order by default.
var CategoryOrder = Ordering{
	"":     "sort_order ASC, name ASC, id ASC",
	"name": "name ASC, id ASC",
}

// Clause returns the ORDER BY clause for sort.
func (o Ordering) Clause(sort string) (string, error) {
	clause, ok := o[sort]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownSort, sort)
	}
	return clause, nil
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
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Paginate returns a GORM scope that applies OFFSET and LIMIT for the given page request.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}

// Find counts the rows matched by query and loads the requested page in
// the order req.Sort selects from ordering. query must already be scoped to
// the owning user.
func Find[T any](query *gorm.DB, req PageRequest, ordering Ordering) (*PageResponse[T], error) {
	req.Defaults()

	clause, err := ordering.Clause(req.Sort)
	if err != nil {
		return nil, err
	}

	var totalItems int64
	if err := query.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var items []T
	if err := query.Session(&gorm.Session{}).Order(clause).Scopes(Paginate(req)).Find(&items).Error; err != nil {
		return nil, err
	}

	page := NewPageResponse(items, req.Page, req.PageSize, totalItems)
	return &page, nil
}
