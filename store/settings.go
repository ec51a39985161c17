package store

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config returns plugin setting, ok is false when setting was never set.
func (s *Store) Config(ctx context.Context, plugin, name string) (value string, ok bool, err error) {
	err = s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT value FROM config_plugins WHERE plugin = ? AND name = ?`,
			&sqlitex.ExecOptions{
				Args: []any{plugin, name},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					value, ok = stmt.ColumnText(0), true
					return nil
				},
			})
	})
	if err != nil {
		return "", false, fmt.Errorf("unable to get setting %s/%s: %w", plugin, name, err)
	}
	return value, ok, nil
}

// ConfigAll returns all settings of the plugin.
func (s *Store) ConfigAll(ctx context.Context, plugin string) (map[string]string, error) {
	res := make(map[string]string)
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT name, value FROM config_plugins WHERE plugin = ?`,
			&sqlitex.ExecOptions{
				Args: []any{plugin},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					res[stmt.ColumnText(0)] = stmt.ColumnText(1)
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get settings of %s: %w", plugin, err)
	}
	return res, nil
}

// SetConfig stores plugin setting.
func (s *Store) SetConfig(ctx context.Context, plugin, name, value string) error {
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO config_plugins (plugin, name, value) VALUES (?, ?, ?)
			ON CONFLICT (plugin, name) DO UPDATE SET value = excluded.value`,
			&sqlitex.ExecOptions{Args: []any{plugin, name, value}})
	})
	if err != nil {
		return fmt.Errorf("unable to set %s/%s: %w", plugin, name, err)
	}
	return nil
}

// UnsetConfig removes plugin setting.
func (s *Store) UnsetConfig(ctx context.Context, plugin, name string) error {
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `DELETE FROM config_plugins WHERE plugin = ? AND name = ?`,
			&sqlitex.ExecOptions{Args: []any{plugin, name}})
	})
	if err != nil {
		return fmt.Errorf("unable to unset %s/%s: %w", plugin, name, err)
	}
	return nil
}
