package store

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"coursetheme/config"
	"coursetheme/course"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "moodle.sqlite"), PoolSize: 2}
	s, err := Open(context.Background(), cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestOpenWithoutLogger(t *testing.T) {
	cfg := &config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "nolog.sqlite"), PoolSize: 1}
	s, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestInitIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Errorf("second Init() error = %v", err)
	}
}

func TestAverageRating(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	catID, err := s.AddCategory(ctx, 0, "Physics", true)
	if err != nil {
		t.Fatal(err)
	}
	courseID, err := s.AddCourse(ctx, catID, "Mechanics", "")
	if err != nil {
		t.Fatal(err)
	}

	avg, err := s.AverageRating(ctx, courseID)
	if err != nil {
		t.Fatalf("AverageRating() error = %v", err)
	}
	if avg != 0 {
		t.Errorf("AverageRating() without ratings = %v, want 0", avg)
	}

	for user, r := range []int{5, 4, 4, 5} {
		if err := s.Rate(ctx, courseID, int64(user+1), r); err != nil {
			t.Fatalf("Rate() error = %v", err)
		}
	}
	// second vote of the same user replaces the first one
	if err := s.Rate(ctx, courseID, 1, 3); err != nil {
		t.Fatal(err)
	}
	avg, err = s.AverageRating(ctx, courseID)
	if err != nil {
		t.Fatalf("AverageRating() error = %v", err)
	}
	if avg != 4 {
		t.Errorf("AverageRating() = %v, want 4", avg)
	}

	if err := s.Rate(ctx, courseID, 10, 6); err == nil {
		t.Errorf("Rate() accepted out of range rating")
	}
}

func TestAuthors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	courseID, err := s.AddCourse(ctx, 1, "Optics", "")
	if err != nil {
		t.Fatal(err)
	}
	authors, err := s.Authors(ctx, courseID)
	if err != nil || authors != "" {
		t.Errorf("Authors() = %q, %v, want empty", authors, err)
	}

	if err := s.SetCustomField(ctx, courseID, AuthorsField, "Smirnov S.V."); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCustomField(ctx, courseID, AuthorsField, "Smirnov S.V., Ivanov I.I."); err != nil {
		t.Fatal(err)
	}
	authors, err = s.Authors(ctx, courseID)
	if err != nil {
		t.Fatalf("Authors() error = %v", err)
	}
	if authors != "Smirnov S.V., Ivanov I.I." {
		t.Errorf("Authors() = %q", authors)
	}
}

func TestCourses(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	catID, err := s.AddCategory(ctx, 0, "Physics", true)
	if err != nil {
		t.Fatal(err)
	}
	var ids []int64
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		id, err := s.AddCourse(ctx, catID, name, "<p>"+name+"</p>")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	if err := s.AddContact(ctx, ids[2], course.Contact{UserID: 7, FullName: "Ivan Ivanov"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Rate(ctx, ids[2], 1, 5); err != nil {
		t.Fatal(err)
	}
	if err := s.SetCustomField(ctx, ids[2], AuthorsField, "Ivanov"); err != nil {
		t.Fatal(err)
	}

	page, total, err := s.Courses(ctx, catID, 2, 2)
	if err != nil {
		t.Fatalf("Courses() error = %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("Courses() = %d courses of %d, want 2 of 5", len(page), total)
	}
	c := page[0]
	if c.FullName != "C" || c.Summary != "<p>C</p>" || c.CategoryID != catID {
		t.Errorf("unexpected course %+v", c)
	}
	if len(c.Contacts) != 1 || c.Contacts[0].FullName != "Ivan Ivanov" || c.Contacts[0].Role != "editingteacher" {
		t.Errorf("contacts = %+v", c.Contacts)
	}
	if c.Rating != 5 {
		t.Errorf("rating = %v, want 5", c.Rating)
	}
	if c.CustomFields[AuthorsField] != "Ivanov" {
		t.Errorf("custom fields = %v", c.CustomFields)
	}

	all, total, err := s.Courses(ctx, catID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 || total != 5 {
		t.Errorf("Courses() without limit = %d of %d", len(all), total)
	}

	none, total, err := s.Courses(ctx, catID+100, 0, 10)
	if err != nil || len(none) != 0 || total != 0 {
		t.Errorf("Courses() of empty category = %v, %d, %v", none, total, err)
	}
}

func TestCourseOverviewFiles(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	courseID, err := s.AddCourse(ctx, 1, "Optics", "")
	if err != nil {
		t.Fatal(err)
	}
	ctxID, err := s.CourseContext(ctx, courseID)
	if err != nil {
		t.Fatalf("CourseContext() error = %v", err)
	}
	_, err = s.AddFile(ctx, &File{ContextID: ctxID, Component: "course", FileArea: "overviewfiles", FileName: "cover.png", Content: []byte("png")})
	if err != nil {
		t.Fatal(err)
	}

	courses, _, err := s.Courses(ctx, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 1 || len(courses[0].OverviewFiles) != 1 {
		t.Fatalf("courses = %+v", courses)
	}
	f := courses[0].OverviewFiles[0]
	if f.ContextID != ctxID || f.FileName != "cover.png" || f.MimeType != "image/png" {
		t.Errorf("overview file = %+v", f)
	}

	if _, err := s.CourseContext(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("CourseContext() of missing course error = %v", err)
	}
}

func TestCategory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Seed(ctx, bytes.NewReader(SampleData()), "theme_ikbfu2021", t.TempDir()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	root, err := s.Category(ctx, 0, 0, 2)
	if err != nil {
		t.Fatalf("Category() error = %v", err)
	}
	if root.ChildCount != 2 || len(root.Subcategories) != 2 {
		t.Fatalf("root children = %d", root.ChildCount)
	}
	inst := root.Subcategories[0]
	if inst.Name != "Institute of Physics and Technology" {
		t.Errorf("first category = %q", inst.Name)
	}
	if inst.CourseCount != 3 || len(inst.Courses) != 2 {
		t.Errorf("courses = %d of %d, want 2 of 3", len(inst.Courses), inst.CourseCount)
	}
	archive := inst.Subcategories[1]
	if archive.Visible || len(archive.Subcategories) != 1 || archive.Subcategories[0].CourseCount != 1 {
		t.Errorf("unexpected archive %+v", archive)
	}

	shallow, err := s.Category(ctx, inst.ID, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if shallow.Name != inst.Name || len(shallow.Subcategories) != 2 {
		t.Fatalf("shallow = %+v", shallow)
	}
	applied := shallow.Subcategories[0]
	if len(applied.Courses) != 0 || applied.CourseCount != 2 {
		t.Errorf("not loaded category = %d courses of %d", len(applied.Courses), applied.CourseCount)
	}
	if shallow.Subcategories[1].ChildCount != 1 {
		t.Errorf("not loaded category child count = %d", shallow.Subcategories[1].ChildCount)
	}

	if _, err := s.Category(ctx, 9999, 0, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("Category() of missing category error = %v", err)
	}

	preset, ok, err := s.Config(ctx, "theme_ikbfu2021", "preset")
	if err != nil || !ok || preset != "default.scss" {
		t.Errorf("seeded preset = %q, %v, %v", preset, ok, err)
	}
}

func TestSeedRejectsUnknownFields(t *testing.T) {
	s := openTestStore(t)
	err := s.Seed(context.Background(), strings.NewReader("categories:\n  - title: x\n"), "theme_x", "")
	if err == nil {
		t.Errorf("Seed() accepted unknown field")
	}
}

func TestConfig(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, err := s.Config(ctx, "theme_x", "logo"); ok || err != nil {
		t.Errorf("Config() of unset setting = %v, %v", ok, err)
	}
	if err := s.SetConfig(ctx, "theme_x", "logo", "/a.png"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetConfig(ctx, "theme_x", "logo", "/b.png"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetConfig(ctx, "theme_y", "logo", "/c.png"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Config(ctx, "theme_x", "logo")
	if err != nil || !ok || v != "/b.png" {
		t.Errorf("Config() = %q, %v, %v", v, ok, err)
	}
	all, err := s.ConfigAll(ctx, "theme_x")
	if err != nil || len(all) != 1 || all["logo"] != "/b.png" {
		t.Errorf("ConfigAll() = %v, %v", all, err)
	}
	if err := s.UnsetConfig(ctx, "theme_x", "logo"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Config(ctx, "theme_x", "logo"); ok {
		t.Errorf("setting still present after UnsetConfig()")
	}
}

func TestFiles(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	f := &File{ContextID: SystemContext, Component: "theme_x", FileArea: "logo", FilePath: "/", FileName: "logo.svg", Content: []byte("<svg/>"), MimeType: "image/svg+xml"}
	id, err := s.AddFile(ctx, f)
	if err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}
	sum := sha1.Sum([]byte("/1/theme_x/logo/0/logo.svg"))
	if got, want := PathNameHash(SystemContext, "theme_x", "logo", 0, "", "logo.svg"), hex.EncodeToString(sum[:]); got != want || f.PathNameHash() != want {
		t.Errorf("PathNameHash() = %s, want %s", got, want)
	}

	f.Content = []byte("<svg></svg>")
	id2, err := s.AddFile(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id {
		t.Errorf("replacing file changed id %d -> %d", id, id2)
	}

	got, err := s.File(ctx, SystemContext, "theme_x", "logo", 0, "/", "logo.svg")
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if string(got.Content) != "<svg></svg>" || got.Size != 11 || got.MimeType != "image/svg+xml" {
		t.Errorf("File() = %+v", got)
	}

	if _, err := s.AddFile(ctx, &File{ContextID: SystemContext, Component: "theme_x", FileArea: "logo", FileName: "alt.png", Content: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	list, err := s.Files(ctx, SystemContext, "theme_x", "logo", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].FileName != "alt.png" || list[0].Content != nil {
		t.Errorf("Files() = %+v", list)
	}

	if err := s.DeleteFile(ctx, f.PathNameHash()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.FileByHash(ctx, f.PathNameHash()); !errors.Is(err, ErrNotFound) {
		t.Errorf("FileByHash() after delete error = %v", err)
	}
}
