package render

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursetheme/common"
	"coursetheme/course"
	"coursetheme/locale"
)

// CategoryTree renders subcategories and courses of cat. The category's own
// name is not included. Empty category produces empty fragment.
func (r *CourseRenderer) CategoryTree(ctx context.Context, opts course.DisplayOptions, cat *course.Category) (string, error) {
	content, expanded, err := r.categoryContent(ctx, opts.ForNested(), cat, 0)
	if err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", nil
	}

	tree := newElement("div", r.class("course_category_tree"), "clearfix")
	tree.CreateAttr("id", r.treeID(cat.ID))
	applyAttributes(tree, opts.Attributes)

	if childCount(cat) > 0 {
		classes, label := "collapseexpand aabtn", r.strs.Get(locale.ExpandAll)
		if expanded {
			classes, label = classes+" collapse-all", r.strs.Get(locale.CollapseAll)
		}
		createLink(createElement(tree, "div", "collapsible-actions"), "#", label, classes)
		r.page.RequireStrings("moodle", locale.CollapseAll, locale.ExpandAll)
	}

	body := createElement(tree, "div", "content")
	for _, el := range content {
		body.AddChild(el)
	}

	r.log.Debug("Category tree", zap.Int64("id", cat.ID), zap.Bool("expanded", expanded))
	return toHTML(tree)
}

// treeID is stable for the same category so pages could be compared and
// cached.
func (r *CourseRenderer) treeID(categoryID int64) string {
	return "category-tree-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(r.urls.Category(categoryID))).String()
}

func childCount(cat *course.Category) int {
	return max(cat.ChildCount, len(cat.Subcategories))
}

func courseCount(cat *course.Category) int {
	return max(cat.CourseCount, len(cat.Courses))
}

// categoryContent renders subcategory blocks followed by category courses.
// Returned flag reports whether any subcategory at any depth was loaded with
// content.
func (r *CourseRenderer) categoryContent(ctx context.Context, opts course.DisplayOptions, cat *course.Category, depth int) ([]*etree.Element, bool, error) {
	var (
		content  []*etree.Element
		expanded bool
	)

	if len(cat.Subcategories) > 0 {
		subs := newElement("div", "subcategories")
		for i := range cat.Subcategories {
			block, exp, err := r.categoryBlock(ctx, opts, &cat.Subcategories[i], depth+1)
			if err != nil {
				return nil, false, err
			}
			expanded = expanded || exp
			subs.AddChild(block)
		}
		content = append(content, subs)
	}

	listOpts := opts
	if depth > 0 {
		// nested listings are not paged, they link to the category page instead
		listOpts.PaginationURL = ""
		listOpts.ViewMoreURL = r.urls.Category(cat.ID)
		listOpts.Offset = 0
	}
	list, err := r.courseListing(ctx, listOpts, cat.Courses, courseCount(cat))
	if err != nil {
		return nil, false, fmt.Errorf("category %d: %w", cat.ID, err)
	}
	if list != nil {
		content = append(content, list)
	}
	return content, expanded, nil
}

func (r *CourseRenderer) categoryBlock(ctx context.Context, opts course.DisplayOptions, cat *course.Category, depth int) (*etree.Element, bool, error) {
	r.page.RequireModule(expanderModule)

	classes := []string{"category"}
	if !cat.Visible {
		classes = append(classes, "dimmed_category")
	}

	var (
		content  []*etree.Element
		expanded bool
	)
	if opts.SubcategoryDepth == 0 || depth < opts.SubcategoryDepth {
		var err error
		content, expanded, err = r.categoryContent(ctx, opts, cat, depth)
		if err != nil {
			return nil, false, err
		}
		classes = append(classes, "loaded")
		if len(content) > 0 {
			classes = append(classes, "with_children")
			expanded = true
		}
	} else {
		classes = append(classes, "notloaded")
		if childCount(cat) > 0 || (opts.ShowMode >= common.ShowModeCollapsed && courseCount(cat) > 0) {
			classes = append(classes, "with_children", "collapsed")
		}
	}

	block := newElement("div", classes...)
	block.CreateAttr("data-categoryid", strconv.FormatInt(cat.ID, 10))
	block.CreateAttr("data-depth", strconv.Itoa(depth))
	block.CreateAttr("data-showcourses", strconv.Itoa(showCoursesValue(opts.ShowMode)))
	block.CreateAttr("data-type", typeCategory)

	heading := "h3"
	if depth > 1 {
		heading = "h4"
	}
	name := createElement(createElement(block, "div", "info"), heading, "categoryname aabtn")
	createLink(name, r.urls.Category(cat.ID), cat.Name)
	if n := courseCount(cat); opts.ShowMode == common.ShowModeCount && n > 0 {
		createElement(name, "span", "numberofcourse").SetText(fmt.Sprintf(" (%d)", n))
	}

	body := createElement(block, "div", "content")
	for _, el := range content {
		body.AddChild(el)
	}
	return block, expanded, nil
}

// showCoursesValue maps show mode to numeric value category expander script
// expects in data-showcourses.
func showCoursesValue(mode common.ShowMode) int {
	switch mode {
	case common.ShowModeCount:
		return 5
	case common.ShowModeCollapsed:
		return 10
	case common.ShowModeAuto:
		return 15
	case common.ShowModeExpanded:
		return 20
	default:
		return 0
	}
}
