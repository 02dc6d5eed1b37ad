package u_io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "photo.jpg", "photo.jpg"},
		{"path separators", "a/b\\c.png", "a_b_c.png"},
		{"shell characters", "pic$(rm).gif", "pic__rm_.gif"},
		{"unicode", "fotografía.png", "fotograf_a.png"},
		{"spaces kept", "my holiday pic.jpg", "my holiday pic.jpg"},
		{"trimmed", "  edge.mp4  ", "edge.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFilename(tt.input); got != tt.expected {
				t.Errorf("CleanFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEnsureUniqueFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")

	if got := EnsureUniqueFilename(path); got != path {
		t.Errorf("expected untouched path for missing file, got %q", got)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	got := EnsureUniqueFilename(path)
	want := filepath.Join(dir, "photo_1.jpg")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	got = EnsureUniqueFilename(path)
	if want := filepath.Join(dir, "photo_2.jpg"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFileChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	sum, err := FileChecksum(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// sha256("hello")
	if sum != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("unexpected checksum %q", sum)
	}

	other := filepath.Join(dir, "other.bin")
	if err := os.WriteFile(other, []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	sum2, err := FileChecksum(other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != sum2 {
		t.Errorf("identical content must produce identical checksums")
	}

	if _, err := FileChecksum(filepath.Join(dir, "missing.bin")); err == nil {
		t.Errorf("expected error for missing file")
	}

	if !strings.HasPrefix(sum, "2cf24") {
		t.Errorf("checksum should be hex encoded, got %q", sum)
	}
}
