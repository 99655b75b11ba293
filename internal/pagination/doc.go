// Package pagination turns item counts into page-number display models and slices
// in-memory collections into pages.
//
// This package contains the pagination logic shared by the list views and the CLI:
//   - ComputePageModel: page-number strip with ellipsis entries
//   - SlicePage: one page of an in-memory slice
//   - Sort/Sorter: "field:order" parsing and generic field-based sorting
//   - Meta: serializable page metadata for structured output
//
// Everything here is pure and safe to call on every render.
package pagination
