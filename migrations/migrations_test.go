package migrations

import (
	"strings"
	"testing"
)

// The repositories name these columns in their SQL; a rename in one place
// but not the other only surfaces against a live database.
func TestInitMigrationDefinesRepositoryColumns(t *testing.T) {
	data, err := FS.ReadFile("0001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(data)

	for _, column := range []string{
		"image_key",
		"expiration_date",
		"veterinarian",
		"next_due_date",
		"crm_appointment_id",
		"qr_code",
		"profile_img",
		"delivered_at",
	} {
		if !strings.Contains(sql, column) {
			t.Errorf("0001_init.up.sql is missing column %q", column)
		}
	}
}

func TestMigrationPairsComplete(t *testing.T) {
	entries, err := FS.ReadDir(".")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	seen := map[string]map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		var version, direction string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			version, direction = strings.TrimSuffix(name, ".up.sql"), "up"
		case strings.HasSuffix(name, ".down.sql"):
			version, direction = strings.TrimSuffix(name, ".down.sql"), "down"
		default:
			t.Errorf("unexpected migration file name %q", name)
			continue
		}
		if seen[version] == nil {
			seen[version] = map[string]bool{}
		}
		seen[version][direction] = true
	}

	if len(seen) == 0 {
		t.Fatal("no migrations embedded")
	}
	for version, directions := range seen {
		if !directions["up"] || !directions["down"] {
			t.Errorf("migration %s is missing its up or down half", version)
		}
	}
}
