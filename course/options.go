package course

import "coursetheme/common"

// DisplayOptions controls how a listing is rendered. Renderers receive it by
// value and never write it back, so the same options may be reused for
// sibling calls.
type DisplayOptions struct {
	ShowMode common.ShowMode
	// Offset and Limit of the course page being shown, Limit 0 means
	// configured default
	Offset int
	Limit  int
	// PaginationURL enables numbered paging bar, ViewMoreURL enables single
	// "view more" link when PaginationURL is empty
	PaginationURL string
	ViewMoreURL   string
	AllowShowAll  bool
	// Subcategory levels to load eagerly, 0 - unlimited
	SubcategoryDepth int
	// Additional attributes for the outermost wrapper of a call
	Attributes map[string]string
}

// WithShowMode returns copy of options with mode replaced.
func (o DisplayOptions) WithShowMode(mode common.ShowMode) DisplayOptions {
	o.ShowMode = mode
	return o
}

// ForNested returns options suitable for listings nested inside the
// outermost one: wrapper attributes are not inherited.
func (o DisplayOptions) ForNested() DisplayOptions {
	o.Attributes = nil
	return o
}
