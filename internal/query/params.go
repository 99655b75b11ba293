// Package query holds list query state (search, sort, inventory category, page) and derives
// the request parameters sent to a collection endpoint.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rshade/stockdesk/internal/pagination"
)

// Request parameter names understood by the backend.
const (
	ParamPage          = "page"
	ParamLimit         = "limit"
	ParamSearch        = "q"
	ParamSort          = "sort"
	ParamInventoryType = "inventoryType"
)

// Category partitions inventory data by owner.
type Category string

// Known categories.
const (
	CategoryCompany  Category = "company"
	CategorySupplier Category = "supplier"
)

// ErrInvalidCategory is returned for categories other than company and supplier.
var ErrInvalidCategory = errors.New("category must be 'company' or 'supplier'")

// ParseCategory parses a category name, case-insensitively. Empty input yields CategoryCompany.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryCompany, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryCompany || c == CategorySupplier
}

// Other returns the opposite category.
func (c Category) Other() Category {
	if c == CategorySupplier {
		return CategoryCompany
	}
	return CategorySupplier
}

// Params is the immutable set of request parameters for one collection fetch.
// Params values are comparable with ==.
type Params struct {
	Page       int
	PageSize   int
	SearchText string
	Sort       pagination.Sort
	Category   Category
}

// DefaultParams returns first-page company parameters with the default page size.
func DefaultParams() Params {
	return Params{
		Page:     pagination.MinPage,
		PageSize: pagination.DefaultPageSize,
		Category: CategoryCompany,
	}
}

// Values encodes p as query-string values. Empty search and sort are omitted.
func (p Params) Values() url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(p.Page))
	v.Set(ParamLimit, strconv.Itoa(p.PageSize))
	if p.SearchText != "" {
		v.Set(ParamSearch, p.SearchText)
	}
	if !p.Sort.IsZero() {
		v.Set(ParamSort, p.Sort.String())
	}
	if p.Category != "" {
		v.Set(ParamInventoryType, string(p.Category))
	}
	return v
}

// Key returns a stable string identifying p, suitable for de-duplication.
func (p Params) Key() string {
	return p.Values().Encode()
}

// Offset returns the index of the first item of p's page.
func (p Params) Offset() int {
	return pagination.Offset(p.Page, p.PageSize)
}
