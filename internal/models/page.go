package models

// Page is a bounded window into a larger sorted collection.
// len(Content) never exceeds PageSize; the last page may be shorter.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
}

// EmptyPage returns a page with no content for the given window.
func EmptyPage[T any](page, pageSize int) *Page[T] {
	return &Page[T]{Content: []T{}, Page: page, PageSize: pageSize}
}
