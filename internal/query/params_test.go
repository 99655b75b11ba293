package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/stockdesk/internal/pagination"
)

func TestParams_Values(t *testing.T) {
	t.Parallel()

	p := Params{
		Page:       2,
		PageSize:   25,
		SearchText: "steel",
		Sort:       pagination.Sort{Field: "price", Order: pagination.SortOrderDesc},
		Category:   CategorySupplier,
	}
	v := p.Values()
	assert.Equal(t, "2", v.Get(ParamPage))
	assert.Equal(t, "25", v.Get(ParamLimit))
	assert.Equal(t, "steel", v.Get(ParamSearch))
	assert.Equal(t, "price:desc", v.Get(ParamSort))
	assert.Equal(t, "supplier", v.Get(ParamInventoryType))
	assert.Equal(t, 25, p.Offset())

	bare := DefaultParams().Values()
	assert.False(t, bare.Has(ParamSearch))
	assert.False(t, bare.Has(ParamSort))
	assert.Equal(t, "inventoryType=company&limit=10&page=1", DefaultParams().Key())
}

func TestParams_Comparable(t *testing.T) {
	t.Parallel()

	a := DefaultParams()
	b := DefaultParams()
	assert.True(t, a == b)
	b.Page = 2
	assert.False(t, a == b)
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, CategoryCompany, c)

	c, err = ParseCategory(" Supplier ")
	require.NoError(t, err)
	assert.Equal(t, CategorySupplier, c)
	assert.Equal(t, CategoryCompany, c.Other())

	_, err = ParseCategory("warehouse")
	require.ErrorIs(t, err, ErrInvalidCategory)
}
