// Package course defines read-only records describing courses and course
// categories as supplied by the host for a single rendering call.
package course

import (
	"mime"
	"path"
	"strings"

	"github.com/h2non/filetype"
)

// Contact is a person listed on the course card (usually a teacher).
type Contact struct {
	UserID   int64
	FullName string
	Role     string
}

// OverviewFile is a file attached to the course overview file area.
type OverviewFile struct {
	ContextID int64
	FileName  string
	MimeType  string
}

// Type returns MIME type of the file, guessing it from file name extension
// when host did not supply one.
func (f OverviewFile) Type() string {
	if len(f.MimeType) > 0 {
		return f.MimeType
	}
	ext := strings.TrimPrefix(path.Ext(f.FileName), ".")
	if t := filetype.GetType(ext); t != filetype.Unknown {
		return t.MIME.Value
	}
	return mime.TypeByExtension(path.Ext(f.FileName))
}

// IsImage reports whether file could be shown as thumbnail.
func (f OverviewFile) IsImage() bool {
	return strings.HasPrefix(f.Type(), "image/")
}

// Summary is everything course listing needs to know about a single course.
type Summary struct {
	ID            int64
	CategoryID    int64
	FullName      string
	Summary       string
	OverviewFiles []OverviewFile
	Contacts      []Contact
	CustomFields  map[string]string
	// Aggregate rating as known to the host, 0 when none
	Rating float64
}

func (s *Summary) HasSummary() bool {
	return len(strings.TrimSpace(s.Summary)) > 0
}

func (s *Summary) HasContacts() bool {
	return len(s.Contacts) > 0
}

func (s *Summary) HasOverviewFiles() bool {
	return len(s.OverviewFiles) > 0
}

func (s *Summary) HasCustomFields() bool {
	for _, v := range s.CustomFields {
		if len(v) > 0 {
			return true
		}
	}
	return false
}

// HasDetails reports whether there is anything to show beyond the course
// name.
func (s *Summary) HasDetails() bool {
	return s.HasSummary() || s.HasContacts() || s.HasOverviewFiles() || s.HasCustomFields()
}

// Category is a node of the category tree. Courses hold only the page of
// courses host decided to load, CourseCount is their total number.
type Category struct {
	ID            int64
	ParentID      int64
	Name          string
	Visible       bool
	ChildCount    int
	Subcategories []Category
	Courses       []Summary
	CourseCount   int
}
