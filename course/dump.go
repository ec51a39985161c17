package course

import (
	"fmt"
	"strconv"
	"strings"
)

type treeWriter struct {
	w strings.Builder
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	tw.w.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw *treeWriter) text(depth int, label, value string) {
	if len(value) == 0 {
		return
	}
	tw.line(depth, "%s: %s", label, strconv.Quote(value))
}

// Dump returns indented human readable outline of loaded category tree, used
// in debug reports.
func (c *Category) Dump() string {
	var tw treeWriter
	c.dump(&tw, 0)
	return tw.w.String()
}

func (c *Category) dump(tw *treeWriter, depth int) {
	hidden := ""
	if !c.Visible {
		hidden = " hidden"
	}
	tw.line(depth, "category %d %q%s children=%d courses=%d/%d",
		c.ID, c.Name, hidden, c.ChildCount, len(c.Courses), c.CourseCount)
	for i := range c.Courses {
		s := &c.Courses[i]
		tw.line(depth+1, "course %d %q rating=%.2f files=%d contacts=%d", s.ID, s.FullName, s.Rating, len(s.OverviewFiles), len(s.Contacts))
		tw.text(depth+2, "summary", s.Summary)
	}
	for i := range c.Subcategories {
		c.Subcategories[i].dump(tw, depth+1)
	}
}
