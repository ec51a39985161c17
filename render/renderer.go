// Package render produces HTML fragments for course listings: course cards,
// category trees and paginated course lists.
package render

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"coursetheme/config"
	"coursetheme/course"
	"coursetheme/locale"
)

// RatingLookup returns average rating of the course, 0 when course was never
// rated.
type RatingLookup interface {
	AverageRating(ctx context.Context, courseID int64) (float64, error)
}

// AuthorsLookup returns authors of the course as entered by editors, empty
// string when not specified.
type AuthorsLookup interface {
	Authors(ctx context.Context, courseID int64) (string, error)
}

// CourseListRenderer renders course listing fragments. Rendering for a
// single page is expected to happen from a single goroutine.
type CourseListRenderer interface {
	CourseCard(ctx context.Context, opts course.DisplayOptions, c *course.Summary, positionClasses string) (string, error)
	CategoryTree(ctx context.Context, opts course.DisplayOptions, cat *course.Category) (string, error)
	CourseListing(ctx context.Context, opts course.DisplayOptions, courses []course.Summary, totalCount ...int) (string, error)
}

// Settings are rendering parameters coming from theme configuration.
type Settings struct {
	// Theme name, used as CSS class prefix
	Theme                     string
	NameLimit                 int
	CoursesPerPage            int
	CoursesWithSummariesLimit int
	AuthorsDefault            string
}

// NewSettings extracts rendering settings from configuration.
func NewSettings(cfg *config.Config) Settings {
	return Settings{
		Theme:                     cfg.Theme.Name,
		NameLimit:                 cfg.Listing.NameLimit,
		CoursesPerPage:            cfg.Listing.CoursesPerPage,
		CoursesWithSummariesLimit: cfg.Listing.CoursesWithSummariesLimit,
		AuthorsDefault:            cfg.Listing.AuthorsDefault,
	}
}

// Lookups groups host data sources renderer consults for every card.
type Lookups struct {
	Ratings RatingLookup
	Authors AuthorsLookup
}

// CourseRenderer is default CourseListRenderer implementation.
type CourseRenderer struct {
	settings Settings
	lookups  Lookups
	strs     *locale.Strings
	urls     *URLs
	page     *Page
	log      *zap.Logger
}

var _ CourseListRenderer = (*CourseRenderer)(nil)

// New creates renderer for a single page. When lookups are not provided
// values supplied with course summaries are used.
func New(settings Settings, lookups Lookups, strs *locale.Strings, urls *URLs, page *Page, log *zap.Logger) (*CourseRenderer, error) {
	if strs == nil || urls == nil || page == nil {
		return nil, errors.New("renderer requires strings, urls and page")
	}
	if settings.NameLimit <= 0 {
		settings.NameLimit = 70
	}
	if settings.CoursesPerPage <= 0 {
		settings.CoursesPerPage = 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseRenderer{
		settings: settings,
		lookups:  lookups,
		strs:     strs,
		urls:     urls,
		page:     page,
		log:      log.Named("render"),
	}, nil
}

// Page returns requirements collected so far.
func (r *CourseRenderer) Page() *Page {
	return r.page
}

func (r *CourseRenderer) class(name string) string {
	return r.settings.Theme + "-" + name
}
