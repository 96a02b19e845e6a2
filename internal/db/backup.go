package db

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Backup writes a consistent copy of the database file to dstPath.
// Callers should quiesce writers first; the WAL is checkpointed so the
// copied file is self-contained.
func (s *Store) Backup(dstPath string) error {
	if _, err := s.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("checkpoint before backup: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}
	return copyFile(s.path, dstPath)
}

// Restore replaces the live database file with srcPath and reopens the
// connection. Stop the reminder worker before calling this.
func (s *Store) Restore(srcPath string) error {
	if _, err := os.Stat(srcPath); err != nil {
		return fmt.Errorf("backup file: %w", err)
	}

	if err := s.DB.Close(); err != nil {
		return err
	}
	if err := copyFile(srcPath, s.path); err != nil {
		return err
	}

	sqlDB, err := sql.Open("sqlite3", s.path+"?_foreign_keys=on")
	if err != nil {
		return err
	}
	s.DB = sqlDB
	return s.init()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
