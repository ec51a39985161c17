package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"coursetheme/course"
)

// custom field holding course authors
const AuthorsField = "authors"

// AverageRating returns average of all ratings given to the course, 0 when
// course has none.
func (s *Store) AverageRating(ctx context.Context, courseID int64) (float64, error) {
	var avg float64
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT IFNULL(AVG(rating), 0) FROM block_rate_course WHERE course = ?`,
			&sqlitex.ExecOptions{
				Args: []any{courseID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					avg = stmt.ColumnFloat(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("unable to get rating of course %d: %w", courseID, err)
	}
	return avg, nil
}

// Authors returns value of course authors custom field, empty when not set.
func (s *Store) Authors(ctx context.Context, courseID int64) (string, error) {
	var authors string
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			SELECT d.value FROM customfield_data d
			JOIN customfield_field f ON f.id = d.fieldid
			WHERE f.shortname = ? AND d.instanceid = ?`,
			&sqlitex.ExecOptions{
				Args: []any{AuthorsField, courseID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					authors = stmt.ColumnText(0)
					return nil
				},
			})
	})
	if err != nil {
		return "", fmt.Errorf("unable to get authors of course %d: %w", courseID, err)
	}
	return authors, nil
}

// Courses returns visible courses of category starting at offset and total
// number of them. limit <= 0 returns everything.
func (s *Store) Courses(ctx context.Context, categoryID int64, offset, limit int) ([]course.Summary, int, error) {
	var (
		courses []course.Summary
		total   int
	)
	err := s.withConn(ctx, func(conn *sqlite.Conn) (err error) {
		courses, total, err = coursePage(conn, categoryID, offset, limit)
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("unable to list courses of category %d: %w", categoryID, err)
	}
	return courses, total, nil
}

func coursePage(conn *sqlite.Conn, categoryID int64, offset, limit int) ([]course.Summary, int, error) {
	var total int
	err := sqlitex.Execute(conn, `SELECT COUNT(*) FROM course WHERE category = ? AND visible = 1`,
		&sqlitex.ExecOptions{
			Args: []any{categoryID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				total = stmt.ColumnInt(0)
				return nil
			},
		})
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = -1
	}

	var courses []course.Summary
	err = sqlitex.Execute(conn, `
		SELECT c.id, c.category, c.fullname, c.summary,
			(SELECT IFNULL(AVG(r.rating), 0) FROM block_rate_course r WHERE r.course = c.id)
		FROM course c
		WHERE c.category = ? AND c.visible = 1
		ORDER BY c.sortorder, c.id
		LIMIT ? OFFSET ?`,
		&sqlitex.ExecOptions{
			Args: []any{categoryID, limit, max(offset, 0)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				courses = append(courses, course.Summary{
					ID:         stmt.ColumnInt64(0),
					CategoryID: stmt.ColumnInt64(1),
					FullName:   stmt.ColumnText(2),
					Summary:    stmt.ColumnText(3),
					Rating:     stmt.ColumnFloat(4),
				})
				return nil
			},
		})
	if err != nil {
		return nil, 0, err
	}
	for i := range courses {
		if err := courseDetails(conn, &courses[i]); err != nil {
			return nil, 0, err
		}
	}
	return courses, total, nil
}

func courseDetails(conn *sqlite.Conn, c *course.Summary) error {
	err := sqlitex.Execute(conn, `SELECT userid, fullname, role FROM course_contacts WHERE courseid = ? ORDER BY id`,
		&sqlitex.ExecOptions{
			Args: []any{c.ID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				c.Contacts = append(c.Contacts, course.Contact{
					UserID:   stmt.ColumnInt64(0),
					FullName: stmt.ColumnText(1),
					Role:     stmt.ColumnText(2),
				})
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("contacts of course %d: %w", c.ID, err)
	}

	err = sqlitex.Execute(conn, `SELECT contextid, filename, mimetype FROM course_overview_files WHERE courseid = ? ORDER BY filename`,
		&sqlitex.ExecOptions{
			Args: []any{c.ID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				c.OverviewFiles = append(c.OverviewFiles, course.OverviewFile{
					ContextID: stmt.ColumnInt64(0),
					FileName:  stmt.ColumnText(1),
					MimeType:  stmt.ColumnText(2),
				})
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("overview files of course %d: %w", c.ID, err)
	}

	err = sqlitex.Execute(conn, `
		SELECT f.shortname, d.value FROM customfield_data d
		JOIN customfield_field f ON f.id = d.fieldid
		WHERE d.instanceid = ?`,
		&sqlitex.ExecOptions{
			Args: []any{c.ID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				if c.CustomFields == nil {
					c.CustomFields = make(map[string]string)
				}
				c.CustomFields[stmt.ColumnText(0)] = stmt.ColumnText(1)
				return nil
			},
		})
	if err != nil {
		return fmt.Errorf("custom fields of course %d: %w", c.ID, err)
	}
	return nil
}

// AddCourse creates course in category together with its context, returns
// course id.
func (s *Store) AddCourse(ctx context.Context, categoryID int64, fullName, summary string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(conn *sqlite.Conn) (err error) {
		id, _, err = addCourse(conn, categoryID, fullName, summary)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("unable to add course '%s': %w", fullName, err)
	}
	return id, nil
}

func addCourse(conn *sqlite.Conn, categoryID int64, fullName, summary string) (int64, int64, error) {
	id, err := insert(conn, `
		INSERT INTO course (category, fullname, summary, sortorder)
		VALUES (?, ?, ?, (SELECT IFNULL(MAX(sortorder), 0) + 1 FROM course WHERE category = ?))`,
		categoryID, fullName, summary, categoryID)
	if err != nil {
		return 0, 0, err
	}
	ctxID, err := insert(conn, `INSERT INTO context (contextlevel, instanceid) VALUES (?, ?)`, ContextCourse, id)
	if err != nil {
		return 0, 0, err
	}
	return id, ctxID, nil
}

// CourseContext returns context id of the course.
func (s *Store) CourseContext(ctx context.Context, courseID int64) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT id FROM context WHERE contextlevel = ? AND instanceid = ?`,
			&sqlitex.ExecOptions{
				Args: []any{ContextCourse, courseID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					id = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("unable to get context of course %d: %w", courseID, err)
	}
	if id == 0 {
		return 0, fmt.Errorf("context of course %d: %w", courseID, ErrNotFound)
	}
	return id, nil
}

// AddContact lists user on course card.
func (s *Store) AddContact(ctx context.Context, courseID int64, contact course.Contact) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		return addContact(conn, courseID, contact)
	})
}

func addContact(conn *sqlite.Conn, courseID int64, contact course.Contact) error {
	role := contact.Role
	if len(role) == 0 {
		role = "editingteacher"
	}
	return sqlitex.Execute(conn, `
		INSERT INTO course_contacts (courseid, userid, fullname, role) VALUES (?, ?, ?, ?)
		ON CONFLICT (courseid, userid) DO UPDATE SET fullname = excluded.fullname, role = excluded.role`,
		&sqlitex.ExecOptions{Args: []any{courseID, contact.UserID, contact.FullName, role}})
}

// SetCustomField sets course custom field value creating field when
// necessary.
func (s *Store) SetCustomField(ctx context.Context, courseID int64, shortName, value string) error {
	return s.withTx(ctx, func(conn *sqlite.Conn) error {
		return setCustomField(conn, courseID, shortName, value)
	})
}

func setCustomField(conn *sqlite.Conn, courseID int64, shortName, value string) error {
	err := sqlitex.Execute(conn, `INSERT OR IGNORE INTO customfield_field (shortname, name) VALUES (?, ?)`,
		&sqlitex.ExecOptions{Args: []any{shortName, shortName}})
	if err != nil {
		return err
	}
	return sqlitex.Execute(conn, `
		INSERT INTO customfield_data (fieldid, instanceid, value)
		VALUES ((SELECT id FROM customfield_field WHERE shortname = ?), ?, ?)
		ON CONFLICT (fieldid, instanceid) DO UPDATE SET value = excluded.value`,
		&sqlitex.ExecOptions{Args: []any{shortName, courseID, value}})
}

// Rate records user rating of the course replacing previous one.
func (s *Store) Rate(ctx context.Context, courseID, userID int64, rating int) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		return rate(conn, courseID, userID, rating)
	})
}

func rate(conn *sqlite.Conn, courseID, userID int64, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d is out of range 1..5", rating)
	}
	return sqlitex.Execute(conn, `
		INSERT INTO block_rate_course (course, userid, rating) VALUES (?, ?, ?)
		ON CONFLICT (course, userid) DO UPDATE SET rating = excluded.rating`,
		&sqlitex.ExecOptions{Args: []any{courseID, userID, rating}})
}
