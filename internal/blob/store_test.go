package blob

import (
	"errors"
	"os"
	"testing"
)

func TestFSSaveAndResolve(t *testing.T) {
	store, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS failed: %v", err)
	}

	handle, err := store.Save("file_1_notes.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if handle != "/uploads/file_1_notes.txt" {
		t.Fatalf("unexpected handle: %s", handle)
	}

	path, err := store.Resolve("file_1_notes.txt")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected blob content: %q", data)
	}
}

func TestFSResolveMissing(t *testing.T) {
	store, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS failed: %v", err)
	}

	if _, err := store.Resolve("nope.bin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSResolveRejectsTraversal(t *testing.T) {
	store, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS failed: %v", err)
	}

	for _, name := range []string{"../secret", "a/b", "..", "."} {
		if _, err := store.Resolve(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Resolve(%q) should be rejected, got %v", name, err)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"notes.txt":        "notes.txt",
		"../../etc/passwd": "passwd",
		"dir/inner.bin":    "inner.bin",
		"win\\path\\f.txt": "f.txt",
		"..":               "",
		".":                "",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}
