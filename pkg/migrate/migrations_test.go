package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/crumbhq/crumb-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestTimeSlotMigrationContainsCapacityConstraints(t *testing.T) {
	content := readMigration(t, "create_time_slots")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS time_slots",
		"FOREIGN KEY (bakery_id) REFERENCES bakeries(id) ON DELETE CASCADE",
		"CHECK (end_time > start_time)",
		"CHECK (max_orders > 0)",
		"CHECK (current_orders >= 0 AND current_orders <= max_orders)",
		"DROP TABLE IF EXISTS time_slots",
	})
}

func TestOrdersMigrationContainsStatusConstraints(t *testing.T) {
	content := readMigration(t, "create_orders")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CONSTRAINT orders_order_number_key UNIQUE (order_number)",
		"'PENDING', 'CONFIRMED', 'PREPARING', 'READY', 'COMPLETED', 'CANCELLED'",
		"'PENDING', 'PAID', 'FAILED', 'REFUNDED'",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS order_items",
	})
}

func TestBakeriesMigrationContainsSlotDefaults(t *testing.T) {
	content := readMigration(t, "create_bakeries")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS bakeries",
		"CONSTRAINT bakeries_slug_key UNIQUE (slug)",
		"CHECK (slot_capacity > 0)",
		"DROP TABLE IF EXISTS bakeries",
	})
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Slot Notes!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_slot_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for name that sanitizes to empty")
	}
}

const wellFormedMigration = `-- +goose Up
-- +goose StatementBegin
CREATE TABLE notes (id int);
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
DROP TABLE notes;
-- +goose StatementEnd
`

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestValidateDirReportsAnnotationProblems(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unclosed statement block",
			body: "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n\n-- +goose Down\nSELECT 1;\n",
			want: "StatementBegin on line 2 is not closed before Down",
		},
		{
			name: "nested statement block",
			body: "-- +goose Up\n-- +goose StatementBegin\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\n",
			want: "StatementBegin on line 3 nested inside line 2",
		},
		{
			name: "end without begin",
			body: "-- +goose Up\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\n",
			want: "StatementEnd on line 3 has no StatementBegin",
		},
		{
			name: "down before up",
			body: "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
			want: "Down annotation on line 1 comes before Up",
		},
		{
			name: "missing down",
			body: "-- +goose Up\nSELECT 1;\n",
			want: `missing "-- +goose Down"`,
		},
		{
			name: "block left open at end of file",
			body: "-- +goose Up\nSELECT 1;\n-- +goose Down\n-- +goose StatementBegin\nSELECT 1;\n",
			want: "StatementBegin on line 4 is not closed before end of file",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeMigration(t, dir, "20260301090000_broken.sql", tc.body)

			err := migrate.ValidateDir(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func TestValidateDirRejectsImpossibleTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20261399000000_bad_month.sql", wellFormedMigration)

	err := migrate.ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "not a valid UTC timestamp") {
		t.Fatalf("expected timestamp error, got %v", err)
	}
}

func TestValidateDirCollectsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260301090000_ok.sql", wellFormedMigration)
	writeMigration(t, dir, "20260301090500_no_down.sql", "-- +goose Up\nSELECT 1;\n")
	writeMigration(t, dir, "AddNotes.sql", wellFormedMigration)
	writeMigration(t, dir, "README.md", "not a migration")

	err := migrate.ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 problems, got %d: %v", n, err)
	}
}

func TestListFilesOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20260302000000_second.sql", wellFormedMigration)
	writeMigration(t, dir, "20260301000000_first.sql", wellFormedMigration)
	writeMigration(t, dir, "notes.sql", wellFormedMigration)

	files, err := migrate.ListFiles(dir)
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(files))
	}
	if files[0].Version != 20260301000000 || files[1].Version != 20260302000000 {
		t.Fatalf("unexpected order: %+v", files)
	}
}

func TestCreateSQLMigrationSortsAfterNewest(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "20991231235959_from_the_future.sql", wellFormedMigration)

	path, err := migrate.CreateSQLMigration(dir, "add pickup notes")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if filepath.Base(path) != "21000101000000_add_pickup_notes.sql" {
		t.Fatalf("unexpected filename %s", filepath.Base(path))
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("directory should stay valid: %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := migrate.ParseVersion("20260301090500"); err != nil || v != 20260301090500 {
		t.Fatalf("unexpected result %d, %v", v, err)
	}
	if v, err := migrate.ParseVersion("0"); err != nil || v != 0 {
		t.Fatalf("expected zero version, got %d, %v", v, err)
	}
	for _, raw := range []string{"", "latest", "-1"} {
		if _, err := migrate.ParseVersion(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
