package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreWriteAndPublicURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(context.Background(), "user-1/child-1/avatar_123.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "user-1/child-1/avatar_123.png" {
		t.Fatalf("key = %q", key)
	}

	data, err := os.ReadFile(filepath.Join(dir, "user-1", "child-1", "avatar_123.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("data = %q", data)
	}

	if got := store.PublicURL(key); got != "http://localhost:8080/static/user-1/child-1/avatar_123.png" {
		t.Fatalf("PublicURL = %q", got)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := store.Write(context.Background(), "../escape.png", []byte("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
	if _, err := store.Write(context.Background(), "   ", []byte("x")); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
