package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/magonotec/magonotec-api/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSetGetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := db.Set("greeting", "sent"); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	value, ok, err := db.Get("greeting")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if !ok || value != "sent" {
		t.Fatalf("Get = (%q, %v), want (\"sent\", true)", value, ok)
	}
}

func TestGetAbsentKey(t *testing.T) {
	db := openTestDB(t)

	value, ok, err := db.Get("missing")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("Get = (%q, %v), want absent", value, ok)
	}
}

func TestSetOverwrites(t *testing.T) {
	db := openTestDB(t)

	if err := db.Set("k", "first"); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if err := db.Set("k", "second"); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	value, _, err := db.Get("k")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if value != "second" {
		t.Fatalf("Get = %q, want %q", value, "second")
	}
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)

	if err := db.Set("k", "v"); err != nil {
		t.Fatalf("Set err: %v", err)
	}
	if err := db.Remove("k"); err != nil {
		t.Fatalf("Remove err: %v", err)
	}

	if _, ok, _ := db.Get("k"); ok {
		t.Fatal("key still present after Remove")
	}

	// Removing an absent key is fine.
	if err := db.Remove("k"); err != nil {
		t.Fatalf("Remove absent key err: %v", err)
	}
}
