// Package localstore 基于 SQLite 的本地数据平台，离线使用时替代托管平台
package localstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/casos-paranormales/casos-cli/lib"
	"github.com/casos-paranormales/casos-cli/meta"
	"github.com/cloudwego/hertz/cmd/hz/util/logs"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store 实现 lib.Platform
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ lib.Platform = (*Store)(nil)

// Open 打开或创建数据库并执行迁移，父目录不存在时自动创建
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logs.Debugf("local store opened: %s\n", path)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount > 0 {
		var v int
		err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
		if err == nil && v == schemaVersion {
			return nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read schema version: %w", err)
		}
		if err == nil {
			return fmt.Errorf("unknown schema version %d", v)
		}
	}
	return s.freshInstall()
}

func (s *Store) freshInstall() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, name := range defaultCaseTypes {
		if _, err := tx.Exec("INSERT OR IGNORE INTO case_types(name) VALUES(?)", name); err != nil {
			return fmt.Errorf("seed case types: %w", err)
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) lib.Timestamp {
	ts, err := lib.ParseTimestamp(v)
	if err != nil {
		logs.Debugf("bad timestamp %q: %v\n", v, err)
	}
	return ts
}

// likeArg 不区分大小写的子串匹配参数
func likeArg(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(v)) + "%"
}

// platformError 把约束冲突映射为与托管平台一致的错误码
func platformError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &lib.PlatformError{StatusCode: 409, Code: meta.CodeUniqueViolation, Message: msg}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &lib.PlatformError{StatusCode: 409, Code: meta.CodeForeignKey, Message: msg}
	}
	return err
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return lib.ErrNotFound
	}
	return err
}

