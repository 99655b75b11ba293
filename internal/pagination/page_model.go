package pagination

import (
	"errors"
	"fmt"
	"strconv"
)

// Pagination defaults and limits.
const (
	DefaultPageSize   = 10
	MinPageSize       = 1
	MaxPageSize       = 1000
	DefaultMaxVisible = 7
	DefaultSiblings   = 1
	MinPage           = 1

	// MinMaxVisible is the narrowest collapsed strip: first, last, current and two gaps.
	MinMaxVisible = 5

	// EllipsisLabel is how an ellipsis entry renders.
	EllipsisLabel = "..."
)

// Validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = fmt.Errorf("page size must be between %d and %d", MinPageSize, MaxPageSize)
)

// Entry is one slot in a page-number strip: either a page or an ellipsis.
// Ellipsis entries have Page 0. Key is unique within a PageModel and stable
// across renders of the same model, so views can use it as a rendering key.
type Entry struct {
	Page     int
	Ellipsis bool
	Key      string
}

// Label returns the display text of the entry.
func (e Entry) Label() string {
	if e.Ellipsis {
		return EllipsisLabel
	}
	return strconv.Itoa(e.Page)
}

// PageModel is the derived display model for a paginated list.
type PageModel struct {
	Entries     []Entry
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PageSize    int
	HasPrev     bool
	HasNext     bool
}

// Labels returns the labels of all entries, in order.
func (m PageModel) Labels() []string {
	labels := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		labels[i] = e.Label()
	}
	return labels
}

// Pages returns only the page numbers shown, in order.
func (m PageModel) Pages() []int {
	pages := make([]int, 0, len(m.Entries))
	for _, e := range m.Entries {
		if !e.Ellipsis {
			pages = append(pages, e.Page)
		}
	}
	return pages
}

type options struct {
	siblings int
}

// Option customizes ComputePageModel.
type Option func(*options)

// WithSiblings sets how many pages are shown on each side of the current page
// once the strip collapses. Values below zero are treated as zero.
func WithSiblings(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.siblings = n
	}
}

// ComputePageModel builds the page-number strip for totalItems split into pages of pageSize.
//
// currentPage is clamped into [1, TotalPages]. When TotalPages <= maxVisible every page is
// listed. Otherwise the first page, the last page and a window of siblings around the current
// page are listed; a gap of exactly one page shows that page, a wider gap becomes a single
// ellipsis entry. The window slides inward near either end so it never overlaps the first
// or last page. The strip never holds more than maxVisible entries: siblings is reduced
// to fit, and a maxVisible below MinMaxVisible is raised to it.
func ComputePageModel(totalItems, pageSize, currentPage, maxVisible int, opts ...Option) PageModel {
	o := options{siblings: DefaultSiblings}
	for _, opt := range opts {
		opt(&o)
	}

	if pageSize < MinPageSize {
		pageSize = DefaultPageSize
	}
	if maxVisible < 1 {
		maxVisible = DefaultMaxVisible
	}
	maxVisible = max(maxVisible, MinMaxVisible)
	o.siblings = min(o.siblings, (maxVisible-MinMaxVisible)/2)
	if totalItems < 0 {
		totalItems = 0
	}

	total := TotalPages(totalItems, pageSize)
	current := clamp(currentPage, MinPage, total)

	model := PageModel{
		CurrentPage: current,
		TotalPages:  total,
		TotalItems:  totalItems,
		PageSize:    pageSize,
		HasPrev:     current > MinPage,
		HasNext:     current < total,
	}

	if total <= maxVisible {
		model.Entries = make([]Entry, 0, total)
		for p := 1; p <= total; p++ {
			model.Entries = append(model.Entries, pageEntry(p))
		}
		return model
	}

	start, end := window(current, total, o.siblings)

	entries := make([]Entry, 0, end-start+5) //nolint:mnd // first, last, two gaps, slack.
	entries = append(entries, pageEntry(1))
	entries = appendGap(entries, 1, start)
	for p := start; p <= end; p++ {
		entries = append(entries, pageEntry(p))
	}
	entries = appendGap(entries, end, total)
	entries = append(entries, pageEntry(total))

	model.Entries = entries
	return model
}

// window returns the inclusive [start, end] range of middle pages, kept inside [2, total-1].
//
//nolint:nonamedreturns // Named returns document the range bounds.
func window(current, total, siblings int) (start, end int) {
	start = current - siblings
	end = current + siblings

	if start < 2 {
		end += 2 - start
		start = 2
	}
	if end > total-1 {
		start -= end - (total - 1)
		end = total - 1
	}
	if start < 2 {
		start = 2
	}
	return start, end
}

// appendGap fills the pages strictly between from and to.
func appendGap(entries []Entry, from, to int) []Entry {
	switch missing := to - from - 1; {
	case missing == 1:
		return append(entries, pageEntry(from+1))
	case missing > 1:
		return append(entries, Entry{Ellipsis: true, Key: "ellipsis-" + strconv.Itoa(from)})
	default:
		return entries
	}
}

func pageEntry(p int) Entry {
	return Entry{Page: p, Key: "page-" + strconv.Itoa(p)}
}

// TotalPages returns ceil(totalItems/pageSize), never less than 1.
// A non-positive pageSize is treated as DefaultPageSize.
func TotalPages(totalItems, pageSize int) int {
	if pageSize < MinPageSize {
		pageSize = DefaultPageSize
	}
	if totalItems <= 0 {
		return 1
	}
	pages := totalItems / pageSize
	if totalItems%pageSize > 0 {
		pages++
	}
	return pages
}

// Offset returns the zero-based index of the first item on page.
func Offset(page, pageSize int) int {
	if page < MinPage || pageSize < MinPageSize {
		return 0
	}
	return (page - 1) * pageSize
}

// ValidatePageSize reports whether n is an accepted page size.
func ValidatePageSize(n int) error {
	if n < MinPageSize || n > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, n)
	}
	return nil
}

// ValidatePage reports whether p is an accepted page number.
func ValidatePage(p int) error {
	if p < MinPage {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, p)
	}
	return nil
}

// SlicePage returns items[(page-1)*pageSize : page*pageSize], clipped to the slice.
// It returns an empty slice when page or pageSize is out of range. The result shares
// the backing array of items but has its capacity capped, so appending to it never
// overwrites later items.
func SlicePage[T any](items []T, page, pageSize int) []T {
	if page < MinPage || pageSize < MinPageSize {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) || end < start {
		end = len(items)
	}
	return items[start:end:end]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
