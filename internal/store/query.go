package store

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery describes a list request: free-text search, a named sort key and a page.
type ListQuery struct {
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// ParseListQuery reads search, sort, page and page_size from a query-string getter.
func ParseListQuery(get func(key string, def ...string) string) ListQuery {
	page, _ := strconv.Atoi(get("page"))
	size, _ := strconv.Atoi(get("page_size"))
	return ListQuery{
		Search:   strings.TrimSpace(get("search")),
		Sort:     strings.TrimSpace(get("sort")),
		Page:     page,
		PageSize: size,
	}.normalized()
}

func (q ListQuery) normalized() ListQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	switch {
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	case q.PageSize <= 0:
		q.PageSize = DefaultPageSize
	}
	return q
}

// Paginate is a GORM scope applying the query's offset and limit.
func Paginate(q ListQuery) func(db *gorm.DB) *gorm.DB {
	q = q.normalized()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)
	}
}

// Page is one page of a list response.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, q ListQuery) Page[T] {
	q = q.normalized()
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	return Page[T]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize, TotalPages: pages}
}

// MapPage converts the items of a page, keeping its counters.
func MapPage[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[R]{Items: out, Total: p.Total, Page: p.Page, PageSize: p.PageSize, TotalPages: p.TotalPages}
}

// searchScope matches the term as a substring of any of the columns. Postgres compares
// case-insensitively through ILIKE.
func searchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		op := "LIKE"
		if db.Dialector.Name() == "postgres" {
			op = "ILIKE"
		}
		pattern := "%" + term + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, c := range columns {
			conds = append(conds, c+" "+op+" ?")
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}
