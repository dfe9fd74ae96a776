package db

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}

	if err := db.Init(); err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Should create parent directories
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("failed to get default path: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("expected absolute path, got %q", path)
	}

	if !strings.Contains(path, filepath.Join(".simplr", "simplr.db")) {
		t.Errorf("expected path to contain .simplr/simplr.db, got %q", path)
	}
}

func TestInit_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Init(); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}

func TestGet_Missing(t *testing.T) {
	db := setupTestDB(t)

	value, ok, err := db.Get("app-data")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if ok {
		t.Errorf("expected missing key, got %q", value)
	}
}

func TestSetGet(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Set("app-data", `{"projects":[]}`); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	value, ok, err := db.Get("app-data")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if value != `{"projects":[]}` {
		t.Errorf("value = %q, want %q", value, `{"projects":[]}`)
	}
}

func TestSet_Overwrite(t *testing.T) {
	db := setupTestDB(t)

	_ = db.Set("popout-position", "center")
	if err := db.Set("popout-position", "top-left"); err != nil {
		t.Fatalf("failed to overwrite: %v", err)
	}

	value, _, _ := db.Get("popout-position")
	if value != "top-left" {
		t.Errorf("value = %q, want %q", value, "top-left")
	}
}

func TestVersion(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.Version("app-data")
	if err != nil {
		t.Fatalf("failed to get version: %v", err)
	}
	if v != 0 {
		t.Errorf("version of missing key = %d, want 0", v)
	}

	for i := 1; i <= 3; i++ {
		if err := db.Set("app-data", "x"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		v, _ = db.Version("app-data")
		if v != int64(i) {
			t.Errorf("version after %d writes = %d", i, v)
		}
	}

	// Versions are per key
	other, _ := db.Version("popout-position")
	if other != 0 {
		t.Errorf("unrelated key version = %d, want 0", other)
	}
}

func TestVersion_SharedBetweenConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")

	a, err := Open(path)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer func() { _ = a.Close() }()
	if err := a.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer func() { _ = b.Close() }()

	if err := a.Set("app-data", "from a"); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, ok, err := b.Get("app-data")
	if err != nil || !ok {
		t.Fatalf("get from b: ok=%v err=%v", ok, err)
	}
	if value != "from a" {
		t.Errorf("value = %q, want %q", value, "from a")
	}
	if v, _ := b.Version("app-data"); v != 1 {
		t.Errorf("version seen by b = %d, want 1", v)
	}
}

func TestSetVersion(t *testing.T) {
	db := setupTestDB(t)

	for want := int64(1); want <= 3; want++ {
		got, err := db.SetVersion("app-data", "x")
		if err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if got != want {
			t.Errorf("SetVersion = %d, want %d", got, want)
		}
	}

	if v, _ := db.Version("app-data"); v != 3 {
		t.Errorf("Version = %d, want 3", v)
	}
	if v, _ := db.SetVersion("popout-position", "center"); v != 1 {
		t.Errorf("first write to another key = %d, want 1", v)
	}
}
