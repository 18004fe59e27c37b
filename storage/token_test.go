package storage

import (
	"path/filepath"
	"testing"
)

func TestFileTokenStore(t *testing.T) {
	t.Run("missing file reads as absent", func(t *testing.T) {
		store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
		token, err := store.Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if token != "" {
			t.Errorf("token = %q, want absent", token)
		}
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
		if err := store.Save("opaque-token"); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		token, err := store.Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if token != "opaque-token" {
			t.Errorf("token = %q, want opaque-token", token)
		}
	})

	t.Run("save creates missing parent directories", func(t *testing.T) {
		store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "dir", "token"))
		if err := store.Save("tok"); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		if token, _ := store.Load(); token != "tok" {
			t.Errorf("token = %q, want tok", token)
		}
	})

	t.Run("clear purges and is idempotent", func(t *testing.T) {
		store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
		if err := store.Save("tok"); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear returned error: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("second Clear returned error: %v", err)
		}
		if token, _ := store.Load(); token != "" {
			t.Errorf("token = %q, want purged", token)
		}
	})
}
