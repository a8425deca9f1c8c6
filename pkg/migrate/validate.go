package migrate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

var migrationNameRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

const (
	annotationUp    = "-- +goose Up"
	annotationDown  = "-- +goose Down"
	annotationBegin = "-- +goose StatementBegin"
	annotationEnd   = "-- +goose StatementEnd"
)

// File is one SQL migration on disk.
type File struct {
	Version int64
	Name    string
	Path    string
}

// ListFiles returns the SQL migrations in dir ordered by version. Files that
// do not follow the <YYYYMMDDHHMMSS>_<name>.sql layout are skipped; ValidateDir
// reports them.
func ListFiles(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	// os.ReadDir sorts by name and the version prefix is fixed width, so the
	// result is already in version order.
	var files []File
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := migrationNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		files = append(files, File{Version: version, Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	return files, nil
}

// ValidateDir checks every .sql file in dir and returns all problems found,
// combined with multierr. A directory without migrations is valid.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var (
		errs     error
		prev     string
		prevName string
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := e.Name()

		m := migrationNameRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: filename must be <YYYYMMDDHHMMSS>_<snake_name>.sql", name))
			continue
		}

		version := m[1]
		if _, err := time.Parse(versionLayout, version); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s is not a valid UTC timestamp", name, version))
		}
		switch {
		case version == prev:
			errs = multierr.Append(errs, fmt.Errorf("%s: duplicate version %s (also used by %s)", name, version, prevName))
		case prev != "" && version < prev:
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s does not follow %s", name, version, prevName))
		}
		prev, prevName = version, name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", name, err))
			continue
		}
		for _, problem := range checkAnnotations(string(body)) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", name, problem))
		}
	}
	return errs
}

// checkAnnotations walks the goose annotations of a migration body. Up must
// come first and Down must follow it; statement blocks may not nest and must
// close inside the section that opened them.
func checkAnnotations(body string) []string {
	var (
		problems []string
		section  string
		openLine int
	)

	closeSection := func(next string) {
		if openLine > 0 {
			problems = append(problems, fmt.Sprintf("StatementBegin on line %d is not closed before %s", openLine, next))
			openLine = 0
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(body))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(text, annotationUp):
			switch section {
			case "":
				section = "up"
			case "up":
				problems = append(problems, fmt.Sprintf("duplicate Up annotation on line %d", line))
			case "down":
				problems = append(problems, fmt.Sprintf("Up annotation on line %d comes after Down", line))
			}
		case strings.HasPrefix(text, annotationDown):
			closeSection("Down")
			switch section {
			case "":
				problems = append(problems, fmt.Sprintf("Down annotation on line %d comes before Up", line))
			case "down":
				problems = append(problems, fmt.Sprintf("duplicate Down annotation on line %d", line))
			}
			section = "down"
		case strings.HasPrefix(text, annotationBegin):
			if section == "" {
				problems = append(problems, fmt.Sprintf("StatementBegin on line %d is outside Up and Down", line))
			}
			if openLine > 0 {
				problems = append(problems, fmt.Sprintf("StatementBegin on line %d nested inside line %d", line, openLine))
			}
			openLine = line
		case strings.HasPrefix(text, annotationEnd):
			if openLine == 0 {
				problems = append(problems, fmt.Sprintf("StatementEnd on line %d has no StatementBegin", line))
			}
			openLine = 0
		}
	}
	closeSection("end of file")

	if section == "" {
		problems = append(problems, "missing \""+annotationUp+"\"")
	}
	if section != "down" {
		problems = append(problems, "missing \""+annotationDown+"\"")
	}
	return problems
}
