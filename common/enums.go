// Package common keeps enums shared by configuration and rendering, so
// renderer packages do not need to depend on configuration.
package common

//go:generate go tool go-enum --marshal --names --values

// Course display density. Order matters: modes are compared, anything at or
// below count produces no course cards.
// ENUM(none, count, collapsed, auto, expanded)
type ShowMode int

// Cards shows course cards at all.
func (m ShowMode) Cards() bool {
	return m > ShowModeCount
}

// Kind of pagination control rendered under a course listing.
// ENUM(none, bar, viewMore, showPerPage)
type PagingMode int
