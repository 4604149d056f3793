package migration

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDialectsShareMigrationVersions(t *testing.T) {
	versions := map[string][]string{}
	for _, driver := range []string{"postgres", "mysql"} {
		_, dir, err := gooseDialect(driver)
		if err != nil {
			t.Fatalf("gooseDialect(%s): %v", driver, err)
		}
		entries, err := fs.ReadDir(migrations, dir)
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		for _, entry := range entries {
			versions[driver] = append(versions[driver], entry.Name())
			data, err := fs.ReadFile(migrations, dir+"/"+entry.Name())
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "-- +goose Up") || !strings.Contains(string(data), "-- +goose Down") {
				t.Fatalf("%s/%s lacks goose annotations", dir, entry.Name())
			}
		}
	}

	pg, my := versions["postgres"], versions["mysql"]
	if len(pg) == 0 || len(pg) != len(my) {
		t.Fatalf("postgres=%v mysql=%v", pg, my)
	}
	for i := range pg {
		if pg[i] != my[i] {
			t.Fatalf("migration %d differs: %s vs %s", i, pg[i], my[i])
		}
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewWithDB(nil, "sqlite", nil); err == nil {
		t.Fatal("expected error for sqlite")
	}
}
