package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		want    Sort
		wantErr error
	}{
		{name: "empty", expr: "", want: Sort{}},
		{name: "field only", expr: "price", want: Sort{Field: "price", Order: SortOrderAsc}},
		{name: "explicit asc", expr: "price:asc", want: Sort{Field: "price", Order: SortOrderAsc}},
		{name: "explicit desc", expr: "price:DESC", want: Sort{Field: "price", Order: SortOrderDesc}},
		{name: "too many parts", expr: "a:b:c", wantErr: ErrInvalidSortFormat},
		{name: "empty field", expr: ":asc", wantErr: ErrEmptySortField},
		{name: "bad order", expr: "price:up", wantErr: ErrInvalidSortOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSort(tt.expr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSort_StringAndToggle(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Sort{}.String())
	assert.Equal(t, "name:asc", Sort{Field: "name"}.String())
	assert.Equal(t, Sort{Field: "name", Order: SortOrderDesc}, Sort{Field: "name"}.Toggle())
	assert.Equal(t, Sort{Field: "name", Order: SortOrderAsc}, Sort{Field: "name", Order: SortOrderDesc}.Toggle())
}

type row struct {
	name  string
	price int
}

func TestSorter(t *testing.T) {
	t.Parallel()

	sorter := NewSorter(map[string]LessFunc[row]{
		"name":  func(a, b row) bool { return a.name < b.name },
		"price": func(a, b row) bool { return a.price < b.price },
	})
	rows := []row{{"b", 10}, {"a", 30}, {"c", 10}}

	t.Run("asc", func(t *testing.T) {
		t.Parallel()
		got := sorter.Sort(rows, Sort{Field: "price", Order: SortOrderAsc})
		assert.Equal(t, []row{{"b", 10}, {"c", 10}, {"a", 30}}, got)
	})

	t.Run("desc is stable", func(t *testing.T) {
		t.Parallel()
		got := sorter.Sort(rows, Sort{Field: "price", Order: SortOrderDesc})
		assert.Equal(t, []row{{"a", 30}, {"b", 10}, {"c", 10}}, got)
	})

	t.Run("unknown field keeps order", func(t *testing.T) {
		t.Parallel()
		got := sorter.Sort(rows, Sort{Field: "weight"})
		assert.Equal(t, rows, got)
		require.ErrorIs(t, sorter.Validate(Sort{Field: "weight"}), ErrInvalidSortField)
	})

	t.Run("original untouched", func(t *testing.T) {
		t.Parallel()
		_ = sorter.Sort(rows, Sort{Field: "name"})
		assert.Equal(t, []row{{"b", 10}, {"a", 30}, {"c", 10}}, rows)
	})

	assert.Equal(t, []string{"name", "price"}, sorter.ValidFields())
	assert.NoError(t, sorter.Validate(Sort{}))
}
