package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where cmd/migrate and the dev auto-run look for migrations,
// relative to the repository root.
const DefaultDir = "pkg/migrate/migrations"

const dialect = "postgres"

func openGoose(db *sql.DB, dir string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	return nil
}

// Run executes a goose command (up, down, status, ...) against db.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if err := openGoose(db, dir); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// ParseVersion parses a migration version. Zero is accepted and means an empty
// schema.
func ParseVersion(raw string) (int64, error) {
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 0 {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS or 0)", raw)
	}
	return version, nil
}

// MigrateToVersion moves the schema up or down until the database reports
// target. target must be 0 or the version of a migration present in dir.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, target int64) error {
	if err := openGoose(db, dir); err != nil {
		return err
	}
	if target != 0 {
		known, err := hasVersion(dir, target)
		if err != nil {
			return err
		}
		if !known {
			return fmt.Errorf("no migration with version %d in %s", target, dir)
		}
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

func hasVersion(dir string, version int64) (bool, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if f.Version == version {
			return true, nil
		}
	}
	return false, nil
}
