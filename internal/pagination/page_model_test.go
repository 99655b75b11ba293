package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePageModel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		totalItems  int
		pageSize    int
		currentPage int
		maxVisible  int
		opts        []Option
		wantLabels  []string
		wantCurrent int
		wantPrev    bool
		wantNext    bool
	}{
		{
			name:        "fits without collapsing",
			totalItems:  57,
			pageSize:    10,
			currentPage: 4,
			maxVisible:  7,
			wantLabels:  []string{"1", "2", "3", "4", "5", "6"},
			wantCurrent: 4,
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "both ellipses around middle",
			totalItems:  120,
			pageSize:    10,
			currentPage: 6,
			maxVisible:  7,
			wantLabels:  []string{"1", "...", "5", "6", "7", "...", "12"},
			wantCurrent: 6,
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "first page slides window right",
			totalItems:  120,
			pageSize:    10,
			currentPage: 1,
			maxVisible:  7,
			wantLabels:  []string{"1", "2", "3", "4", "...", "12"},
			wantCurrent: 1,
			wantPrev:    false,
			wantNext:    true,
		},
		{
			name:        "last page slides window left",
			totalItems:  120,
			pageSize:    10,
			currentPage: 12,
			maxVisible:  7,
			wantLabels:  []string{"1", "...", "9", "10", "11", "12"},
			wantCurrent: 12,
			wantPrev:    true,
			wantNext:    false,
		},
		{
			name:        "single missing page is filled",
			totalItems:  120,
			pageSize:    10,
			currentPage: 4,
			maxVisible:  7,
			wantLabels:  []string{"1", "2", "3", "4", "5", "...", "12"},
			wantCurrent: 4,
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "wider window",
			totalItems:  200,
			pageSize:    10,
			currentPage: 10,
			maxVisible:  9,
			opts:        []Option{WithSiblings(2)},
			wantLabels:  []string{"1", "...", "8", "9", "10", "11", "12", "...", "20"},
			wantCurrent: 10,
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "siblings reduced to fit max visible",
			totalItems:  90,
			pageSize:    10,
			currentPage: 5,
			maxVisible:  7,
			opts:        []Option{WithSiblings(2)},
			wantLabels:  []string{"1", "...", "4", "5", "6", "...", "9"},
			wantCurrent: 5,
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "narrow max visible is raised to minimum",
			totalItems:  120,
			pageSize:    10,
			currentPage: 6,
			maxVisible:  2,
			wantLabels:  []string{"1", "...", "6", "...", "12"},
			wantCurrent: 6,
			wantPrev:    true,
			wantNext:    true,
		},
		{
			name:        "page beyond end is clamped",
			totalItems:  25,
			pageSize:    10,
			currentPage: 99,
			maxVisible:  7,
			wantLabels:  []string{"1", "2", "3"},
			wantCurrent: 3,
			wantPrev:    true,
			wantNext:    false,
		},
		{
			name:        "page below start is clamped",
			totalItems:  25,
			pageSize:    10,
			currentPage: -4,
			maxVisible:  7,
			wantLabels:  []string{"1", "2", "3"},
			wantCurrent: 1,
			wantPrev:    false,
			wantNext:    true,
		},
		{
			name:        "empty collection still has page one",
			totalItems:  0,
			pageSize:    10,
			currentPage: 3,
			maxVisible:  7,
			wantLabels:  []string{"1"},
			wantCurrent: 1,
		},
		{
			name:        "invalid page size uses default",
			totalItems:  25,
			pageSize:    0,
			currentPage: 1,
			maxVisible:  7,
			wantLabels:  []string{"1", "2", "3"},
			wantCurrent: 1,
			wantNext:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ComputePageModel(tt.totalItems, tt.pageSize, tt.currentPage, tt.maxVisible, tt.opts...)
			assert.Equal(t, tt.wantLabels, got.Labels())
			assert.Equal(t, tt.wantCurrent, got.CurrentPage)
			assert.Equal(t, tt.wantPrev, got.HasPrev)
			assert.Equal(t, tt.wantNext, got.HasNext)
		})
	}
}

func TestComputePageModel_EllipsisKeysAreUnique(t *testing.T) {
	t.Parallel()

	got := ComputePageModel(500, 10, 25, 7)
	require.Equal(t, []string{"1", "...", "24", "25", "26", "...", "50"}, got.Labels())

	seen := map[string]bool{}
	ellipses := 0
	for _, e := range got.Entries {
		assert.False(t, seen[e.Key], "duplicate key %q", e.Key)
		seen[e.Key] = true
		if e.Ellipsis {
			ellipses++
			assert.Zero(t, e.Page)
		}
	}
	assert.Equal(t, 2, ellipses)

	again := ComputePageModel(500, 10, 25, 7)
	assert.Equal(t, got, again)
}

func TestComputePageModel_OutOfRangeAlwaysHasFirstPage(t *testing.T) {
	t.Parallel()

	for total := 0; total <= 120; total += 7 {
		for _, page := range []int{-10, 0, 1, 5, 13, 1000} {
			m := ComputePageModel(total, 10, page, 7)
			require.NotEmpty(t, m.Entries)
			assert.Equal(t, 1, m.Entries[0].Page)
			assert.GreaterOrEqual(t, m.CurrentPage, 1)
			assert.LessOrEqual(t, m.CurrentPage, m.TotalPages)
			assert.Contains(t, m.Pages(), m.CurrentPage)
		}
	}
}

func TestComputePageModel_NeverExceedsMaxVisible(t *testing.T) {
	t.Parallel()

	for maxVisible := MinMaxVisible; maxVisible <= 11; maxVisible++ {
		for siblings := 0; siblings <= 4; siblings++ {
			for total := 1; total <= 30; total++ {
				for page := 1; page <= total; page++ {
					m := ComputePageModel(total*10, 10, page, maxVisible, WithSiblings(siblings))
					require.LessOrEqual(t, len(m.Entries), maxVisible,
						"total=%d page=%d maxVisible=%d siblings=%d labels=%v",
						total, page, maxVisible, siblings, m.Labels())
					require.Contains(t, m.Pages(), page)
				}
			}
		}
	}
}

func TestSlicePage(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name     string
		page     int
		pageSize int
		want     []int
	}{
		{name: "first page", page: 1, pageSize: 3, want: []int{0, 1, 2}},
		{name: "middle page", page: 2, pageSize: 3, want: []int{3, 4, 5}},
		{name: "short last page", page: 4, pageSize: 3, want: []int{9}},
		{name: "past the end", page: 5, pageSize: 3, want: []int{}},
		{name: "page zero", page: 0, pageSize: 3, want: []int{}},
		{name: "zero page size", page: 1, pageSize: 0, want: []int{}},
		{name: "page larger than slice", page: 1, pageSize: 50, want: items},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SlicePage(items, tt.page, tt.pageSize))
		})
	}
}

func TestSlicePage_RoundTrip(t *testing.T) {
	t.Parallel()

	for total := 0; total <= 40; total++ {
		items := make([]int, total)
		for i := range items {
			items[i] = i * 3
		}
		for pageSize := 1; pageSize <= 12; pageSize++ {
			var rebuilt []int
			pages := TotalPages(total, pageSize)
			for page := 1; page <= pages; page++ {
				chunk := SlicePage(items, page, pageSize)
				require.LessOrEqual(t, len(chunk), pageSize)
				rebuilt = append(rebuilt, chunk...)
			}
			if total == 0 {
				assert.Empty(t, rebuilt)
				continue
			}
			assert.Equal(t, items, rebuilt, "total=%d pageSize=%d", total, pageSize)
		}
	}
}

func TestSlicePage_AppendDoesNotClobber(t *testing.T) {
	t.Parallel()

	items := []string{"a", "b", "c", "d"}
	first := SlicePage(items, 1, 2)
	_ = append(first, "x")
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}

func TestTotalPagesAndOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 6, TotalPages(57, 10))
	assert.Equal(t, 3, TotalPages(25, 0))

	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidatePageSize(25))
	require.ErrorIs(t, ValidatePageSize(0), ErrInvalidPageSize)
	require.ErrorIs(t, ValidatePageSize(MaxPageSize+1), ErrInvalidPageSize)
	require.NoError(t, ValidatePage(1))
	require.ErrorIs(t, ValidatePage(0), ErrInvalidPage)
}

func TestPageModel_Meta(t *testing.T) {
	t.Parallel()

	got := ComputePageModel(25, 10, 2, 7).Meta()
	assert.Equal(t, Meta{
		CurrentPage: 2,
		PageSize:    10,
		TotalPages:  3,
		TotalItems:  25,
		HasPrevious: true,
		HasNext:     true,
	}, got)
}
