package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeNameRe = regexp.MustCompile(`[^a-z0-9]+`)

// migrationTemplate is filled with the snake_case name twice.
const migrationTemplate = annotationUp + `
` + annotationBegin + `
-- %[1]s
` + annotationEnd + `

` + annotationDown + `
` + annotationBegin + `
-- revert %[1]s
` + annotationEnd + `
`

// snakeName lowercases name and collapses every run of other characters into
// a single underscore.
func snakeName(name string) string {
	return strings.Trim(unsafeNameRe.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<snake_name>.sql and returns its path. The version is
// the current UTC time, moved forward a second at a time when needed so it
// always sorts after the newest migration already in dir.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	snake := snakeName(name)
	if snake == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create migrations dir %q: %w", dir, err)
	}

	existing, err := ListFiles(dir)
	if err != nil {
		return "", err
	}
	version := nextVersion(time.Now().UTC(), existing)

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, snake))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, migrationTemplate, snake); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

func nextVersion(now time.Time, existing []File) string {
	version := now.Format(versionLayout)
	if len(existing) == 0 {
		return version
	}
	latest := existing[len(existing)-1]
	latestAt, err := time.Parse(versionLayout, latest.Name[:len(versionLayout)])
	if err != nil || version > latest.Name[:len(versionLayout)] {
		return version
	}
	return latestAt.Add(time.Second).Format(versionLayout)
}
