package listing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frahmantamala/incubation-console/internal"
)

var PageSizes = []int{5, 10, 25, 50}

const DefaultPageSize = 10

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ViewState is the filter/sort/page state of one list. filtered is always derived from raw
// and query; callers go through the setters so it never goes out of date.
type ViewState[T any] struct {
	desc     Descriptor[T]
	raw      []T
	query    string
	filtered []T
	page     int
	pageSize int
	sortKey  string
	sortDir  SortDirection
}

func NewViewState[T any](desc Descriptor[T]) *ViewState[T] {
	return &ViewState[T]{desc: desc, pageSize: DefaultPageSize, sortDir: SortAsc}
}

// SetItems replaces the raw list, recomputes the filtered view and clamps the page.
func (s *ViewState[T]) SetItems(items []T) {
	s.raw = append([]T(nil), items...)
	s.recompute()
}

// SetQuery changes the search query and always returns to the first page.
func (s *ViewState[T]) SetQuery(q string) {
	s.query = strings.TrimSpace(q)
	s.page = 0
	s.recompute()
}

func (s *ViewState[T]) SetPage(page int) {
	s.page = page
	s.clamp()
}

func (s *ViewState[T]) SetPageSize(size int) error {
	if !validPageSize(size) {
		return internal.NewValidationFieldError("pageSize",
			fmt.Sprintf("page size must be one of %v", PageSizes), internal.ErrCodeInvalidPageSize)
	}
	if size != s.pageSize {
		s.pageSize = size
		s.page = 0
	}
	return nil
}

// SetSort orders the filtered rows by column key; an empty key restores backend order.
func (s *ViewState[T]) SetSort(key string, dir SortDirection) error {
	if dir == "" {
		dir = SortAsc
	}
	if dir != SortAsc && dir != SortDesc {
		return internal.NewValidationFieldError("dir", "sort direction must be asc or desc", internal.ErrCodeInvalidSort)
	}
	if key != "" {
		if _, ok := s.desc.column(key); !ok {
			return internal.NewValidationFieldError("sort", fmt.Sprintf("unknown column %q", key), internal.ErrCodeInvalidSort)
		}
	}
	s.sortKey = key
	s.sortDir = dir
	s.recompute()
	return nil
}

func (s *ViewState[T]) Query() string                 { return s.query }
func (s *ViewState[T]) Page() int                     { return s.page }
func (s *ViewState[T]) PageSize() int                 { return s.pageSize }
func (s *ViewState[T]) Sort() (string, SortDirection) { return s.sortKey, s.sortDir }

// Raw returns a copy of the unfiltered list.
func (s *ViewState[T]) Raw() []T { return append([]T(nil), s.raw...) }

// Filtered returns a copy of the whole filtered, sorted list, ignoring paging.
func (s *ViewState[T]) Filtered() []T { return append([]T(nil), s.filtered...) }

func (s *ViewState[T]) TotalPages() int {
	if len(s.filtered) == 0 {
		return 1
	}
	return (len(s.filtered) + s.pageSize - 1) / s.pageSize
}

// PageItems returns the rows of the current page.
func (s *ViewState[T]) PageItems() []T {
	start := s.page * s.pageSize
	if start >= len(s.filtered) {
		return nil
	}
	end := start + s.pageSize
	if end > len(s.filtered) {
		end = len(s.filtered)
	}
	return append([]T(nil), s.filtered[start:end]...)
}

func (s *ViewState[T]) recompute() {
	query := strings.ToLower(s.query)
	filtered := make([]T, 0, len(s.raw))
	for _, item := range s.raw {
		if s.desc.matches(item, query) {
			filtered = append(filtered, item)
		}
	}

	if col, ok := s.desc.column(s.sortKey); ok && s.sortKey != "" {
		desc := s.sortDir == SortDesc
		sort.SliceStable(filtered, func(i, j int) bool {
			if desc {
				return col.less(filtered[j], filtered[i])
			}
			return col.less(filtered[i], filtered[j])
		})
	}

	s.filtered = filtered
	s.clamp()
}

func (s *ViewState[T]) clamp() {
	last := s.TotalPages() - 1
	if s.page > last {
		s.page = last
	}
	if s.page < 0 {
		s.page = 0
	}
}

func validPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}
