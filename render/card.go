package render

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"coursetheme/common"
	"coursetheme/course"
	"coursetheme/locale"
)

const (
	// data-type of course box, categories use 0
	typeCourse   = "1"
	typeCategory = "0"

	expanderModule = "moodle-course-categoryexpander"
)

// CourseCard renders a single course box. positionClasses are added to the
// wrapper as is (usually odd/even/first/last).
func (r *CourseRenderer) CourseCard(ctx context.Context, opts course.DisplayOptions, c *course.Summary, positionClasses string) (string, error) {
	el, err := r.courseCard(ctx, opts.ShowMode, c, positionClasses)
	if err != nil {
		return "", err
	}
	return toHTML(el)
}

func (r *CourseRenderer) courseCard(ctx context.Context, mode common.ShowMode, c *course.Summary, positionClasses string) (*etree.Element, error) {
	if !mode.Cards() {
		return nil, nil
	}

	// lookups go first so failure leaves nothing half built
	rating, err := r.rating(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("unable to get rating for course %d: %w", c.ID, err)
	}
	authors, err := r.authors(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("unable to get authors for course %d: %w", c.ID, err)
	}

	var collapsed string
	if mode < common.ShowModeExpanded {
		collapsed = "collapsed"
	}
	box := newElement("div", "coursebox clearfix", positionClasses, collapsed)
	box.CreateAttr("data-courseid", strconv.FormatInt(c.ID, 10))
	box.CreateAttr("data-type", typeCourse)

	info := createElement(box, "div", r.class("info"))

	title := createElement(info, "div", r.class("row"), r.class("title"))
	createLink(title, r.urls.Course(c.ID), truncateName(c.FullName, r.settings.NameLimit), "aalink stretched-link", r.class("coursename"))
	if mode < common.ShowModeExpanded && c.HasDetails() {
		r.moreInfo(title, c)
	}

	if c.HasOverviewFiles() {
		r.overviewFiles(createElement(info, "div", r.class("row"), r.class("files")), c)
	}

	people := createElement(info, "div", r.class("row"), r.class("authors"))
	createElement(people, "span", r.class("course-authors")).SetText(authors)
	r.contacts(people, c)

	if rating != 0 {
		footer := createElement(info, "div", r.class("row"), r.class("rating"))
		badge := createElement(footer, "span", r.class("course-card-footer"))
		badge.CreateAttr("title", r.strs.Get(locale.Rating))
		badge.SetText(fmt.Sprintf("★ %.2f", rating))
	}

	r.log.Debug("Course card", zap.Int64("id", c.ID), zap.Stringer("mode", mode), zap.Float64("rating", rating))
	return box, nil
}

func (r *CourseRenderer) rating(ctx context.Context, c *course.Summary) (float64, error) {
	if r.lookups.Ratings == nil {
		return c.Rating, nil
	}
	return r.lookups.Ratings.AverageRating(ctx, c.ID)
}

const authorsField = "authors"

func (r *CourseRenderer) authors(ctx context.Context, c *course.Summary) (string, error) {
	var (
		authors string
		err     error
	)
	if r.lookups.Authors != nil {
		authors, err = r.lookups.Authors.Authors(ctx, c.ID)
	} else {
		authors = c.CustomFields[authorsField]
	}
	if err != nil {
		return "", err
	}
	if len(authors) > 0 {
		return authors, nil
	}
	if len(r.settings.AuthorsDefault) > 0 {
		return r.settings.AuthorsDefault, nil
	}
	return r.strs.Get(locale.NoAuthors), nil
}

func (r *CourseRenderer) moreInfo(parent *etree.Element, c *course.Summary) {
	summary := r.strs.Get(locale.Summary)
	a := createLink(parent, r.urls.CourseInfo(c.ID), "", "info", r.class("moreinfo"))
	a.CreateAttr("title", summary)
	a.CreateAttr("aria-label", summary)
	icon := createElement(a, "i", "icon fa fa-info-circle")
	icon.CreateAttr("aria-hidden", "true")
	r.page.RequireModule(expanderModule)
}

func (r *CourseRenderer) overviewFiles(parent *etree.Element, c *course.Summary) {
	for _, f := range c.OverviewFiles {
		href := r.urls.OverviewFile(f.ContextID, f.FileName)
		if f.IsImage() {
			img := createElement(createElement(parent, "div", "courseimage"), "img")
			img.CreateAttr("src", href)
			img.CreateAttr("alt", r.strs.Get(locale.CourseImage))
			continue
		}
		createLink(createElement(parent, "div", "coursefile"), href, f.FileName)
	}
}

func (r *CourseRenderer) contacts(parent *etree.Element, c *course.Summary) {
	if !c.HasContacts() {
		return
	}
	ul := createElement(parent, "ul", r.class("teachers"))
	ul.CreateAttr("aria-label", r.strs.Get(locale.Teachers))
	for _, p := range c.Contacts {
		createLink(createElement(ul, "li"), r.urls.User(p.UserID), p.FullName)
	}
}
