package render

import (
	"slices"
	"testing"
)

func TestPageRequirements(t *testing.T) {
	p := NewPage()
	p.RequireModule("b")
	p.RequireModule("a")
	p.RequireModule("b")
	p.RequireStrings("moodle", "expandall", "collapseall")
	p.RequireStrings("moodle", "collapseall")
	p.RequireStrings("theme", "collapseall")

	if got := p.Modules(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("Modules() = %v", got)
	}
	want := []JSString{{"moodle", "expandall"}, {"moodle", "collapseall"}, {"theme", "collapseall"}}
	if got := p.Strings(); !slices.Equal(got, want) {
		t.Errorf("Strings() = %v, want %v", got, want)
	}
}
