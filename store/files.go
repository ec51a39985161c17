package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// File is stored file with its location in file area.
type File struct {
	ID        int64
	ContextID int64
	Component string
	FileArea  string
	ItemID    int64
	// always starts and ends with "/"
	FilePath string
	FileName string
	MimeType string
	Size     int64
	Modified time.Time
	// empty when listing file area
	Content []byte
}

// PathNameHash returns hash identifying file location.
func PathNameHash(contextID int64, component, area string, itemID int64, filePath, fileName string) string {
	sum := sha1.Sum([]byte("/" + strconv.FormatInt(contextID, 10) + "/" + component + "/" + area + "/" +
		strconv.FormatInt(itemID, 10) + normalizeFilePath(filePath) + fileName))
	return hex.EncodeToString(sum[:])
}

func normalizeFilePath(p string) string {
	p = path.Clean("/" + p)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func (f *File) PathNameHash() string {
	return PathNameHash(f.ContextID, f.Component, f.FileArea, f.ItemID, f.FilePath, f.FileName)
}

// Ext returns file name extension without dot.
func (f *File) Ext() string {
	return strings.TrimPrefix(path.Ext(f.FileName), ".")
}

// AddFile stores file replacing one with the same location, returns file
// id.
func (s *Store) AddFile(ctx context.Context, f *File) (int64, error) {
	f.FilePath = normalizeFilePath(f.FilePath)
	f.Size = int64(len(f.Content))
	if f.Modified.IsZero() {
		f.Modified = time.Now()
	}
	if len(f.MimeType) == 0 {
		if kind, err := filetype.Match(f.Content); err == nil && kind != filetype.Unknown {
			f.MimeType = kind.MIME.Value
		} else if kind := filetype.GetType(f.Ext()); kind != filetype.Unknown {
			f.MimeType = kind.MIME.Value
		}
	}
	contentHash := sha1.Sum(f.Content)

	var id int64
	err := s.withConn(ctx, func(conn *sqlite.Conn) (err error) {
		id, err = insert(conn, `
			INSERT INTO files (contenthash, pathnamehash, contextid, component, filearea, itemid,
				filepath, filename, mimetype, filesize, content, timemodified)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (pathnamehash) DO UPDATE SET
				contenthash = excluded.contenthash, mimetype = excluded.mimetype,
				filesize = excluded.filesize, content = excluded.content,
				timemodified = excluded.timemodified`,
			hex.EncodeToString(contentHash[:]), f.PathNameHash(), f.ContextID, f.Component, f.FileArea, f.ItemID,
			f.FilePath, f.FileName, f.MimeType, f.Size, f.Content, f.Modified.Unix())
		if err != nil {
			return err
		}
		// upsert does not report id of updated row
		return sqlitex.Execute(conn, `SELECT id FROM files WHERE pathnamehash = ?`,
			&sqlitex.ExecOptions{
				Args: []any{f.PathNameHash()},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					id = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	if err != nil {
		return 0, fmt.Errorf("unable to store file '%s%s': %w", f.FilePath, f.FileName, err)
	}
	f.ID = id
	return id, nil
}

const fileColumns = `id, contextid, component, filearea, itemid, filepath, filename, mimetype, filesize, timemodified`

func scanFile(stmt *sqlite.Stmt) File {
	return File{
		ID:        stmt.ColumnInt64(0),
		ContextID: stmt.ColumnInt64(1),
		Component: stmt.ColumnText(2),
		FileArea:  stmt.ColumnText(3),
		ItemID:    stmt.ColumnInt64(4),
		FilePath:  stmt.ColumnText(5),
		FileName:  stmt.ColumnText(6),
		MimeType:  stmt.ColumnText(7),
		Size:      stmt.ColumnInt64(8),
		Modified:  time.Unix(stmt.ColumnInt64(9), 0),
	}
}

// FileByHash returns file with its content by path name hash.
func (s *Store) FileByHash(ctx context.Context, hash string) (*File, error) {
	var f *File
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `SELECT `+fileColumns+`, content FROM files WHERE pathnamehash = ?`,
			&sqlitex.ExecOptions{
				Args: []any{hash},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					file := scanFile(stmt)
					file.Content = make([]byte, stmt.ColumnLen(10))
					stmt.ColumnBytes(10, file.Content)
					f = &file
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("unable to get file %s: %w", hash, err)
	}
	if f == nil {
		return nil, fmt.Errorf("file %s: %w", hash, ErrNotFound)
	}
	return f, nil
}

// File returns file with its content by location.
func (s *Store) File(ctx context.Context, contextID int64, component, area string, itemID int64, filePath, fileName string) (*File, error) {
	return s.FileByHash(ctx, PathNameHash(contextID, component, area, itemID, filePath, fileName))
}

// Files lists file area without file contents. Directory entries are
// skipped.
func (s *Store) Files(ctx context.Context, contextID int64, component, area string, itemID int64) ([]File, error) {
	var files []File
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			SELECT `+fileColumns+` FROM files
			WHERE contextid = ? AND component = ? AND filearea = ? AND itemid = ? AND filename <> '.'
			ORDER BY filepath, filename`,
			&sqlitex.ExecOptions{
				Args: []any{contextID, component, area, itemID},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					files = append(files, scanFile(stmt))
					return nil
				},
			})
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list files of %s/%s: %w", component, area, err)
	}
	return files, nil
}

// DeleteFile removes file by path name hash, removing absent file is not an
// error.
func (s *Store) DeleteFile(ctx context.Context, hash string) error {
	err := s.withConn(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `DELETE FROM files WHERE pathnamehash = ?`,
			&sqlitex.ExecOptions{Args: []any{hash}})
	})
	if err != nil {
		return fmt.Errorf("unable to delete file %s: %w", hash, err)
	}
	return nil
}
