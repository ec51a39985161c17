package render

import (
	"context"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"coursetheme/common"
	"coursetheme/course"
)

// CourseListing renders courses followed by pagination control.
// totalCount is the number of courses available, it defaults to
// len(courses).
func (r *CourseRenderer) CourseListing(ctx context.Context, opts course.DisplayOptions, courses []course.Summary, totalCount ...int) (string, error) {
	total := len(courses)
	if len(totalCount) > 0 {
		total = totalCount[0]
	}
	el, err := r.courseListing(ctx, opts, courses, total)
	if err != nil {
		return "", err
	}
	return toHTML(el)
}

// resolveShowMode turns auto mode into concrete one depending on number of
// courses.
func (r *CourseRenderer) resolveShowMode(mode common.ShowMode, total int) common.ShowMode {
	if mode != common.ShowModeAuto {
		return mode
	}
	if total <= r.settings.CoursesWithSummariesLimit {
		return common.ShowModeExpanded
	}
	return common.ShowModeCollapsed
}

func (r *CourseRenderer) courseListing(ctx context.Context, opts course.DisplayOptions, courses []course.Summary, total int) (*etree.Element, error) {
	if total == 0 {
		return nil, nil
	}
	mode := r.resolveShowMode(opts.ShowMode, total)
	if !mode.Cards() {
		return nil, nil
	}

	wrap := newElement("div", "courses")
	applyAttributes(wrap, opts.Attributes)

	for i := range courses {
		pos := "even"
		if i%2 == 0 {
			pos = "odd"
		}
		if i == 0 {
			pos += " first"
		}
		if i == len(courses)-1 {
			pos += " last"
		}
		card, err := r.courseCard(ctx, mode, &courses[i], pos)
		if err != nil {
			return nil, err
		}
		if card != nil {
			wrap.AddChild(card)
		}
	}

	paging := Paginate(total, len(courses), opts, r.settings.CoursesPerPage)
	if ctl := paging.element(r.strs, r.settings.Theme+"-"); ctl != nil {
		row := createElement(wrap, "div", r.class("row"), r.class("pagination"))
		row.AddChild(ctl)
	}

	r.log.Debug("Course listing",
		zap.Int("shown", len(courses)),
		zap.Int("total", total),
		zap.Stringer("mode", mode),
		zap.Stringer("paging", paging.Mode))
	return wrap, nil
}
