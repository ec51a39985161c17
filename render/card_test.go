package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap/zaptest"

	"coursetheme/common"
	"coursetheme/course"
	"coursetheme/locale"
)

type ratingsMap map[int64]float64

func (m ratingsMap) AverageRating(_ context.Context, id int64) (float64, error) {
	return m[id], nil
}

type authorsMap map[int64]string

func (m authorsMap) Authors(_ context.Context, id int64) (string, error) {
	return m[id], nil
}

type failingLookup struct{ err error }

func (f failingLookup) AverageRating(context.Context, int64) (float64, error) { return 0, f.err }
func (f failingLookup) Authors(context.Context, int64) (string, error)        { return "", f.err }

func testSettings() Settings {
	return Settings{
		Theme:                     "ikbfu2021",
		NameLimit:                 70,
		CoursesPerPage:            20,
		CoursesWithSummariesLimit: 10,
	}
}

func newTestRenderer(t *testing.T, settings Settings, lookups Lookups) *CourseRenderer {
	t.Helper()
	urls, err := NewURLs("http://localhost/moodle/", 1)
	if err != nil {
		t.Fatalf("NewURLs() error = %v", err)
	}
	r, err := New(settings, lookups, locale.New("en"), urls, NewPage(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func parseHTML(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatalf("unable to parse %q: %v", fragment, err)
	}
	return doc
}

func expanded() course.DisplayOptions {
	return course.DisplayOptions{ShowMode: common.ShowModeExpanded}
}

func collapsed() course.DisplayOptions {
	return course.DisplayOptions{ShowMode: common.ShowModeCollapsed}
}

func TestCourseCardHiddenModes(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	c := &course.Summary{ID: 1, FullName: "Physics"}

	for _, mode := range []common.ShowMode{common.ShowModeNone, common.ShowModeCount} {
		out, err := r.CourseCard(context.Background(), course.DisplayOptions{ShowMode: mode}, c, "odd")
		if err != nil {
			t.Fatalf("CourseCard(%s) error = %v", mode, err)
		}
		if out != "" {
			t.Errorf("CourseCard(%s) = %q, want empty", mode, out)
		}
	}
}

func TestCourseCardWrapper(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	c := &course.Summary{ID: 42, FullName: "Physics"}

	tests := []struct {
		name  string
		opts  course.DisplayOptions
		class string
	}{
		{"collapsed", collapsed(), "coursebox clearfix odd first collapsed"},
		{"expanded", expanded(), "coursebox clearfix odd first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.CourseCard(context.Background(), tt.opts, c, "odd first")
			if err != nil {
				t.Fatalf("CourseCard() error = %v", err)
			}
			box := parseHTML(t, out).Find("div.coursebox")
			if box.Length() != 1 {
				t.Fatalf("found %d course boxes in %q", box.Length(), out)
			}
			if got := box.AttrOr("class", ""); got != tt.class {
				t.Errorf("class = %q, want %q", got, tt.class)
			}
			if got := box.AttrOr("data-courseid", ""); got != "42" {
				t.Errorf("data-courseid = %q, want 42", got)
			}
			if got := box.AttrOr("data-type", ""); got != "1" {
				t.Errorf("data-type = %q, want 1", got)
			}
			link := box.Find("a.stretched-link")
			if got := link.AttrOr("href", ""); got != "http://localhost/moodle/course/view.php?id=42" {
				t.Errorf("course link = %q", got)
			}
		})
	}
}

func TestCourseCardNameTruncation(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Physics", "Physics"},
		{"exactly limit", strings.Repeat("a", 70), strings.Repeat("a", 70)},
		{"over limit", strings.Repeat("a", 80), strings.Repeat("a", 70) + "..."},
		{"multibyte", strings.Repeat("ф", 75), strings.Repeat("ф", 70) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.CourseCard(context.Background(), expanded(), &course.Summary{ID: 1, FullName: tt.in}, "")
			if err != nil {
				t.Fatalf("CourseCard() error = %v", err)
			}
			if got := parseHTML(t, out).Find("a.ikbfu2021-coursename").Text(); got != tt.want {
				t.Errorf("name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCourseCardRating(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{Ratings: ratingsMap{1: 4.5, 2: 0}})

	out, err := r.CourseCard(context.Background(), expanded(), &course.Summary{ID: 1, FullName: "Rated"}, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	if got := parseHTML(t, out).Find("span.ikbfu2021-course-card-footer").Text(); got != "★ 4.50" {
		t.Errorf("badge = %q, want %q", got, "★ 4.50")
	}

	out, err = r.CourseCard(context.Background(), expanded(), &course.Summary{ID: 2, FullName: "Not rated"}, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	if n := parseHTML(t, out).Find("span.ikbfu2021-course-card-footer").Length(); n != 0 {
		t.Errorf("badge rendered for zero rating: %q", out)
	}
}

func TestCourseCardRatingFromSummary(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})

	out, err := r.CourseCard(context.Background(), expanded(), &course.Summary{ID: 1, FullName: "Rated", Rating: 3}, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	if got := parseHTML(t, out).Find("span.ikbfu2021-course-card-footer").Text(); got != "★ 3.00" {
		t.Errorf("badge = %q, want %q", got, "★ 3.00")
	}
}

func TestCourseCardAuthors(t *testing.T) {
	lookups := Lookups{Authors: authorsMap{1: "Ivanov I.I., Petrov P.P."}}

	tests := []struct {
		name     string
		settings func(*Settings)
		id       int64
		want     string
	}{
		{"from lookup", nil, 1, "Ivanov I.I., Petrov P.P."},
		{"localized default", nil, 2, "Authors are not specified"},
		{"configured default", func(s *Settings) { s.AuthorsDefault = "Faculty staff" }, 2, "Faculty staff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			if tt.settings != nil {
				tt.settings(&s)
			}
			r := newTestRenderer(t, s, lookups)
			out, err := r.CourseCard(context.Background(), expanded(), &course.Summary{ID: tt.id, FullName: "Course"}, "")
			if err != nil {
				t.Fatalf("CourseCard() error = %v", err)
			}
			if got := parseHTML(t, out).Find("span.ikbfu2021-course-authors").Text(); got != tt.want {
				t.Errorf("authors = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCourseCardAuthorsFromCustomField(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	c := &course.Summary{ID: 1, FullName: "Course", CustomFields: map[string]string{"authors": "Sidorov S.S."}}

	out, err := r.CourseCard(context.Background(), expanded(), c, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	if got := parseHTML(t, out).Find("span.ikbfu2021-course-authors").Text(); got != "Sidorov S.S." {
		t.Errorf("authors = %q", got)
	}
}

func TestCourseCardLookupErrors(t *testing.T) {
	errLookup := errors.New("database is gone")

	for name, lookups := range map[string]Lookups{
		"rating":  {Ratings: failingLookup{errLookup}},
		"authors": {Authors: failingLookup{errLookup}},
	} {
		t.Run(name, func(t *testing.T) {
			r := newTestRenderer(t, testSettings(), lookups)
			out, err := r.CourseCard(context.Background(), expanded(), &course.Summary{ID: 1, FullName: "Course"}, "")
			if !errors.Is(err, errLookup) {
				t.Errorf("error = %v, want %v", err, errLookup)
			}
			if out != "" {
				t.Errorf("output = %q, want empty on error", out)
			}
		})
	}
}

func TestCourseCardMoreInfo(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	detailed := &course.Summary{ID: 7, FullName: "Course", Summary: "<p>About</p>"}
	plain := &course.Summary{ID: 8, FullName: "Course"}

	out, err := r.CourseCard(context.Background(), collapsed(), plain, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	if n := parseHTML(t, out).Find("a.ikbfu2021-moreinfo").Length(); n != 0 {
		t.Errorf("trigger rendered for course without details")
	}
	if mods := r.Page().Modules(); len(mods) != 0 {
		t.Errorf("modules = %v, want none", mods)
	}

	out, err = r.CourseCard(context.Background(), expanded(), detailed, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	if n := parseHTML(t, out).Find("a.ikbfu2021-moreinfo").Length(); n != 0 {
		t.Errorf("trigger rendered in expanded mode")
	}

	for range 2 {
		out, err = r.CourseCard(context.Background(), collapsed(), detailed, "")
		if err != nil {
			t.Fatalf("CourseCard() error = %v", err)
		}
	}
	trigger := parseHTML(t, out).Find("a.ikbfu2021-moreinfo")
	if trigger.Length() != 1 {
		t.Fatalf("trigger not rendered: %q", out)
	}
	if got := trigger.AttrOr("title", ""); got != "Summary" {
		t.Errorf("trigger title = %q", got)
	}
	if got := trigger.AttrOr("href", ""); got != "http://localhost/moodle/course/info.php?id=7" {
		t.Errorf("trigger href = %q", got)
	}
	if mods := r.Page().Modules(); len(mods) != 1 || mods[0] != expanderModule {
		t.Errorf("modules = %v, want [%s]", mods, expanderModule)
	}
}

func TestCourseCardFilesAndContacts(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	c := &course.Summary{
		ID:       3,
		FullName: "Course",
		OverviewFiles: []course.OverviewFile{
			{ContextID: 30, FileName: "cover image.png"},
			{ContextID: 30, FileName: "syllabus.pdf"},
		},
		Contacts: []course.Contact{{UserID: 5, FullName: "Ivan Ivanov", Role: "Teacher"}},
	}

	out, err := r.CourseCard(context.Background(), expanded(), c, "")
	if err != nil {
		t.Fatalf("CourseCard() error = %v", err)
	}
	doc := parseHTML(t, out)

	img := doc.Find("div.courseimage img")
	if got := img.AttrOr("src", ""); got != "http://localhost/moodle/pluginfile.php/30/course/overviewfiles/cover%20image.png" {
		t.Errorf("image src = %q", got)
	}
	if got := doc.Find("div.coursefile a").Text(); got != "syllabus.pdf" {
		t.Errorf("file link = %q", got)
	}
	if strings.Contains(out, "</img>") {
		t.Errorf("void element closed: %q", out)
	}

	teacher := doc.Find("ul.ikbfu2021-teachers li a")
	if teacher.Text() != "Ivan Ivanov" {
		t.Errorf("teacher = %q", teacher.Text())
	}
	if got := teacher.AttrOr("href", ""); got != "http://localhost/moodle/user/view.php?course=1&id=5" {
		t.Errorf("teacher link = %q", got)
	}

	// row order: title, files, authors
	rows := doc.Find("div.ikbfu2021-info > div.ikbfu2021-row")
	want := []string{"ikbfu2021-title", "ikbfu2021-files", "ikbfu2021-authors"}
	if rows.Length() != len(want) {
		t.Fatalf("rows = %d, want %d", rows.Length(), len(want))
	}
	rows.Each(func(i int, s *goquery.Selection) {
		if !s.HasClass(want[i]) {
			t.Errorf("row %d class = %q, want %q", i, s.AttrOr("class", ""), want[i])
		}
	})
}
