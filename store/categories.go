package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"coursetheme/course"
)

// Category loads category with depth levels of subcategories (0 - all of
// them) and first limit courses of every loaded category. Id 0 is the
// invisible root holding top level categories.
func (s *Store) Category(ctx context.Context, id int64, depth, limit int) (*course.Category, error) {
	var cat *course.Category
	err := s.withConn(ctx, func(conn *sqlite.Conn) (err error) {
		if cat, err = category(conn, id); err != nil {
			return err
		}
		return loadCategory(conn, cat, 1, depth, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load category %d: %w", id, err)
	}
	return cat, nil
}

func category(conn *sqlite.Conn, id int64) (*course.Category, error) {
	if id == 0 {
		return &course.Category{Visible: true}, nil
	}
	var cat *course.Category
	err := sqlitex.Execute(conn, `SELECT id, parent, name, visible FROM course_categories WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				cat = &course.Category{
					ID:       stmt.ColumnInt64(0),
					ParentID: stmt.ColumnInt64(1),
					Name:     stmt.ColumnText(2),
					Visible:  stmt.ColumnInt(3) != 0,
				}
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

func loadCategory(conn *sqlite.Conn, cat *course.Category, level, depth, limit int) error {
	err := sqlitex.Execute(conn, `SELECT id, parent, name, visible FROM course_categories WHERE parent = ? ORDER BY sortorder, id`,
		&sqlitex.ExecOptions{
			Args: []any{cat.ID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				cat.Subcategories = append(cat.Subcategories, course.Category{
					ID:       stmt.ColumnInt64(0),
					ParentID: stmt.ColumnInt64(1),
					Name:     stmt.ColumnText(2),
					Visible:  stmt.ColumnInt(3) != 0,
				})
				return nil
			},
		})
	if err != nil {
		return err
	}
	cat.ChildCount = len(cat.Subcategories)

	if cat.Courses, cat.CourseCount, err = coursePage(conn, cat.ID, 0, limit); err != nil {
		return err
	}

	if depth > 0 && level >= depth {
		// not loaded, only counts are known
		for i := range cat.Subcategories {
			if err := countCategory(conn, &cat.Subcategories[i]); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range cat.Subcategories {
		if err := loadCategory(conn, &cat.Subcategories[i], level+1, depth, limit); err != nil {
			return err
		}
	}
	return nil
}

func countCategory(conn *sqlite.Conn, cat *course.Category) error {
	return sqlitex.Execute(conn, `
		SELECT
			(SELECT COUNT(*) FROM course_categories WHERE parent = ?1),
			(SELECT COUNT(*) FROM course WHERE category = ?1 AND visible = 1)`,
		&sqlitex.ExecOptions{
			Args: []any{cat.ID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				cat.ChildCount = stmt.ColumnInt(0)
				cat.CourseCount = stmt.ColumnInt(1)
				return nil
			},
		})
}

// AddCategory creates category under parent (0 for top level), returns its
// id.
func (s *Store) AddCategory(ctx context.Context, parent int64, name string, visible bool) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(conn *sqlite.Conn) (err error) {
		id, err = addCategory(conn, parent, name, visible)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("unable to add category '%s': %w", name, err)
	}
	return id, nil
}

func addCategory(conn *sqlite.Conn, parent int64, name string, visible bool) (int64, error) {
	return insert(conn, `
		INSERT INTO course_categories (parent, name, visible, sortorder)
		VALUES (?, ?, ?, (SELECT IFNULL(MAX(sortorder), 0) + 1 FROM course_categories WHERE parent = ?))`,
		parent, name, boolInt(visible), parent)
}
