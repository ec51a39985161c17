package render

import (
	"context"
	"fmt"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"coursetheme/common"
	"coursetheme/course"
)

func makeCourses(n int) []course.Summary {
	res := make([]course.Summary, n)
	for i := range res {
		res[i] = course.Summary{ID: int64(i + 1), FullName: fmt.Sprintf("Course %d", i+1)}
	}
	return res
}

func TestCourseListingEmpty(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})

	out, err := r.CourseListing(context.Background(), expanded(), nil)
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}
	if out != "" {
		t.Errorf("CourseListing() = %q, want empty", out)
	}

	out, err = r.CourseListing(context.Background(), expanded(), makeCourses(2), 0)
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}
	if out != "" {
		t.Errorf("CourseListing() with zero total = %q, want empty", out)
	}

	out, err = r.CourseListing(context.Background(), course.DisplayOptions{ShowMode: common.ShowModeCount}, makeCourses(2))
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}
	if out != "" {
		t.Errorf("CourseListing() in count mode = %q, want empty", out)
	}
}

func TestCourseListingPositions(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})

	out, err := r.CourseListing(context.Background(), course.DisplayOptions{ShowMode: common.ShowModeAuto}, makeCourses(5))
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}

	want := []string{
		"coursebox clearfix odd first",
		"coursebox clearfix even",
		"coursebox clearfix odd",
		"coursebox clearfix even",
		"coursebox clearfix odd last",
	}
	boxes := parseHTML(t, out).Find("div.courses > div.coursebox")
	if boxes.Length() != len(want) {
		t.Fatalf("cards = %d, want %d", boxes.Length(), len(want))
	}
	boxes.Each(func(i int, s *goquery.Selection) {
		if got := s.AttrOr("class", ""); got != want[i] {
			t.Errorf("card %d class = %q, want %q", i, got, want[i])
		}
	})
}

func TestCourseListingSingleCourse(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})

	out, err := r.CourseListing(context.Background(), expanded(), makeCourses(1))
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}
	if got := parseHTML(t, out).Find("div.coursebox").AttrOr("class", ""); got != "coursebox clearfix odd first last" {
		t.Errorf("class = %q", got)
	}
}

func TestCourseListingAutoMode(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})

	tests := []struct {
		name      string
		courses   int
		total     int
		collapsed int
	}{
		{"few courses expanded", 3, 10, 0},
		{"many courses collapsed", 3, 11, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := course.DisplayOptions{ShowMode: common.ShowModeAuto}
			out, err := r.CourseListing(context.Background(), opts, makeCourses(tt.courses), tt.total)
			if err != nil {
				t.Fatalf("CourseListing() error = %v", err)
			}
			if n := parseHTML(t, out).Find("div.coursebox.collapsed").Length(); n != tt.collapsed {
				t.Errorf("collapsed cards = %d, want %d", n, tt.collapsed)
			}
			if opts.ShowMode != common.ShowModeAuto {
				t.Errorf("caller options modified: %s", opts.ShowMode)
			}
		})
	}
}

func TestCourseListingAttributes(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	opts := expanded()
	opts.Attributes = map[string]string{"class": "frontpage-course-list-all", "id": "frontpage-courses"}

	out, err := r.CourseListing(context.Background(), opts, makeCourses(1))
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}
	wrap := parseHTML(t, out).Find("#frontpage-courses")
	if got := wrap.AttrOr("class", ""); got != "courses frontpage-course-list-all" {
		t.Errorf("class = %q", got)
	}
}

func TestCourseListingPagination(t *testing.T) {
	const categoryURL = "http://localhost/moodle/course/index.php?categoryid=3"

	tests := []struct {
		name    string
		opts    course.DisplayOptions
		courses int
		total   int
		sel     string
		text    string
		href    string
	}{
		{
			name:    "paging bar with show all",
			opts:    course.DisplayOptions{ShowMode: common.ShowModeCollapsed, PaginationURL: categoryURL, AllowShowAll: true},
			courses: 20, total: 45,
			sel:  "div.ikbfu2021-pagination div.paging-showall a",
			text: "Show all 45",
			href: "http://localhost/moodle/course/index.php?categoryid=3&perpage=all",
		},
		{
			name:    "view more",
			opts:    course.DisplayOptions{ShowMode: common.ShowModeCollapsed, ViewMoreURL: categoryURL},
			courses: 20, total: 45,
			sel:  "div.ikbfu2021-pagination div.paging-morelink a",
			text: "View more",
			href: categoryURL,
		},
		{
			name:    "show per page",
			opts:    course.DisplayOptions{ShowMode: common.ShowModeCollapsed, PaginationURL: categoryURL, AllowShowAll: true},
			courses: 25, total: 25,
			sel:  "div.ikbfu2021-pagination div.paging-showperpage a",
			text: "Show 20 per page",
			href: "http://localhost/moodle/course/index.php?categoryid=3&perpage=20",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, testSettings(), Lookups{})
			out, err := r.CourseListing(context.Background(), tt.opts, makeCourses(tt.courses), tt.total)
			if err != nil {
				t.Fatalf("CourseListing() error = %v", err)
			}
			doc := parseHTML(t, out)
			link := doc.Find(tt.sel)
			if link.Length() != 1 {
				t.Fatalf("%s not found in %q", tt.sel, out)
			}
			if got := link.Text(); got != tt.text {
				t.Errorf("text = %q, want %q", got, tt.text)
			}
			if got := link.AttrOr("href", ""); got != tt.href {
				t.Errorf("href = %q, want %q", got, tt.href)
			}
			// pagination goes after the cards
			if doc.Find("div.courses > div").Last().HasClass("coursebox") {
				t.Errorf("pagination is not the last element")
			}
		})
	}
}

func TestCourseListingNoPagination(t *testing.T) {
	r := newTestRenderer(t, testSettings(), Lookups{})
	opts := course.DisplayOptions{ShowMode: common.ShowModeCollapsed, PaginationURL: "http://localhost/moodle/course/index.php"}

	out, err := r.CourseListing(context.Background(), opts, makeCourses(5))
	if err != nil {
		t.Fatalf("CourseListing() error = %v", err)
	}
	if n := parseHTML(t, out).Find("div.ikbfu2021-pagination").Length(); n != 0 {
		t.Errorf("unexpected pagination in %q", out)
	}
}
