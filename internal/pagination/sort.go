package pagination

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sort orders.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// Sort parsing errors.
var (
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'price:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Sort is a field plus direction. The zero value means "no sort".
type Sort struct {
	Field string
	Order string
}

// IsZero reports whether no sort is set.
func (s Sort) IsZero() bool {
	return s.Field == ""
}

// Desc reports whether the order is descending.
func (s Sort) Desc() bool {
	return s.Order == SortOrderDesc
}

// String renders the sort as "field:order", or "" when unset.
func (s Sort) String() string {
	if s.IsZero() {
		return ""
	}
	order := s.Order
	if order == "" {
		order = SortOrderAsc
	}
	return s.Field + ":" + order
}

// Toggle returns the same field with the opposite order.
func (s Sort) Toggle() Sort {
	if s.Desc() {
		return Sort{Field: s.Field, Order: SortOrderAsc}
	}
	return Sort{Field: s.Field, Order: SortOrderDesc}
}

// ParseSort parses "field" or "field:order". An empty string yields the zero Sort.
// The order defaults to ascending.
func ParseSort(expr string) (Sort, error) {
	if strings.TrimSpace(expr) == "" {
		return Sort{}, nil
	}

	parts := strings.Split(expr, ":")
	if len(parts) > sortPartsMax {
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSortFormat, expr)
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return Sort{}, ErrEmptySortField
	}

	order := SortOrderAsc
	if len(parts) == sortPartsMax {
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return Sort{}, fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}

	return Sort{Field: field, Order: order}, nil
}

// LessFunc reports whether a sorts before b in ascending order.
type LessFunc[T any] func(a, b T) bool

// Sorter sorts slices of T by a registered set of named fields.
type Sorter[T any] struct {
	fields map[string]LessFunc[T]
}

// NewSorter creates a Sorter over the given field comparators.
func NewSorter[T any](fields map[string]LessFunc[T]) *Sorter[T] {
	copied := make(map[string]LessFunc[T], len(fields))
	for name, less := range fields {
		copied[name] = less
	}
	return &Sorter[T]{fields: copied}
}

// IsValidField checks if the field is valid for sorting.
func (s *Sorter[T]) IsValidField(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// ValidFields returns all valid sort fields in a stable order.
func (s *Sorter[T]) ValidFields() []string {
	fields := make([]string, 0, len(s.fields))
	for field := range s.fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Validate returns ErrInvalidSortField when by names an unknown field.
func (s *Sorter[T]) Validate(by Sort) error {
	if by.IsZero() || s.IsValidField(by.Field) {
		return nil
	}
	return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, by.Field, strings.Join(s.ValidFields(), ", "))
}

// Sort returns a sorted copy of items. The sort is stable. An unset or unknown
// field returns a copy in the original order.
func (s *Sorter[T]) Sort(items []T, by Sort) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)

	less, ok := s.fields[by.Field]
	if !ok {
		return sorted
	}

	desc := by.Desc()
	sort.SliceStable(sorted, func(i, j int) bool {
		// For descending order, swap i and j in comparisons to maintain stability
		if desc {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})
	return sorted
}
