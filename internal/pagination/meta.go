package pagination

// Meta contains metadata about paginated results for structured output.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// Meta returns the serializable metadata of the model.
func (m PageModel) Meta() Meta {
	return Meta{
		CurrentPage: m.CurrentPage,
		PageSize:    m.PageSize,
		TotalPages:  m.TotalPages,
		TotalItems:  m.TotalItems,
		HasPrevious: m.HasPrev,
		HasNext:     m.HasNext,
	}
}
