package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ShinyNito/officialwechat/core"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS officialwechat_cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// SQLite 基于单个 SQLite 文件的持久化缓存，适合命令行等短生命周期进程
// 跨进程复用 access_token。过期在读取时判断，打开时清理已过期的行。
type SQLite struct {
	db   *sql.DB
	opts options
	now  func() time.Time
}

// OpenSQLite 打开（或创建）path 处的缓存文件
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// 单连接写入，避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, opts: buildOptions(opts), now: time.Now}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	if err := s.Purge(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool) {
	var (
		value     string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM officialwechat_cache WHERE key = ?`, s.opts.key(key),
	).Scan(&value, &expiresAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.opts.logger.WarnContext(ctx, "sqlite get failed", slog.String("key", key), slog.Any("error", err))
		}
		return "", false
	}

	if expiresAt != 0 && s.now().UnixMilli() >= expiresAt {
		return "", false
	}
	return value, true
}

// Set 写入缓存，ttl <= 0 时不过期
func (s *SQLite) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO officialwechat_cache (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		s.opts.key(key), value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM officialwechat_cache WHERE key = ?`, s.opts.key(key)); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

// Purge 删除所有已过期的行
func (s *SQLite) Purge(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM officialwechat_cache WHERE expires_at != 0 AND expires_at <= ?`, s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("purge expired cache: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ core.Cache = (*SQLite)(nil)
