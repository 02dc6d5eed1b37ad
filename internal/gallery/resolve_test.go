package gallery

import (
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestResolveSniffsContent(t *testing.T) {
	mimeType, ext := Resolve("photo.xyz", pngHeader)
	if mimeType != "image/png" {
		t.Errorf("expected image/png, got %q", mimeType)
	}
	if ext != "png" {
		t.Errorf("expected png, got %q", ext)
	}
}

func TestResolveByName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantMime string
		wantExt  string
	}{
		{"jpeg", "photo.jpg", "image/jpeg", "jpg"},
		{"uppercase", "PHOTO.JPG", "image/jpeg", "jpg"},
		{"text with charset stripped", "notes.txt", "text/plain", "txt"},
		{"video", "clip.mp4", "video/mp4", "mp4"},
		{"unknown extension", "data.xyz123", "", "xyz123"},
		{"no extension", "README", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, ext := Resolve(tt.fileName, nil)
			if mimeType != tt.wantMime {
				t.Errorf("Resolve(%q) mime = %q, want %q", tt.fileName, mimeType, tt.wantMime)
			}
			if ext != tt.wantExt {
				t.Errorf("Resolve(%q) ext = %q, want %q", tt.fileName, ext, tt.wantExt)
			}
		})
	}
}

func TestResolveGIFHeader(t *testing.T) {
	header := append([]byte("GIF89a"), 0x01, 0x00, 0x01, 0x00)
	mimeType, ext := Resolve("animation", header)
	if mimeType != "image/gif" {
		t.Errorf("expected image/gif, got %q", mimeType)
	}
	if ext != "gif" {
		t.Errorf("expected gif, got %q", ext)
	}
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mystery.bin")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	mimeType, ext := ResolveFile(path)
	if mimeType != "image/png" {
		t.Errorf("expected image/png, got %q", mimeType)
	}
	if ext != "png" {
		t.Errorf("expected png, got %q", ext)
	}

	// Missing file degrades to name-based resolution.
	mimeType, ext = ResolveFile(filepath.Join(dir, "gone.mp3"))
	if mimeType != "audio/mpeg" {
		t.Errorf("expected audio/mpeg, got %q", mimeType)
	}
	if ext != "mp3" {
		t.Errorf("expected mp3, got %q", ext)
	}
}

func TestDefaultFolder(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"", "Download"},
		{"image/png", "Pictures"},
		{"image/jpeg", "Pictures"},
		{"video/mp4", "Movies"},
		{"video/x-matroska", "Movies"},
		{"audio/mpeg", "Music"},
		{"application/pdf", "Documents"},
		{"text/plain", "Documents"},
	}

	for _, tt := range tests {
		if got := DefaultFolder(tt.mimeType); got != tt.want {
			t.Errorf("DefaultFolder(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}

func TestNormalizeFileName(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"photo", "jpg", "photo.jpg"},
		{"photo.png", "jpg", "photo.png"},
		{"my.holiday.photo", "jpg", "my.holiday.photo"},
		{"photo", "", "photo"},
	}

	for _, tt := range tests {
		if got := NormalizeFileName(tt.name, tt.ext); got != tt.want {
			t.Errorf("NormalizeFileName(%q, %q) = %q, want %q", tt.name, tt.ext, got, tt.want)
		}
	}
}

func TestTypeAllowed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		allowed []string
		want    bool
	}{
		{"empty list allows everything", nil, true},
		{"extension with dot", []string{".png"}, true},
		{"extension without dot", []string{"png"}, true},
		{"extension case insensitive", []string{".PNG"}, true},
		{"wrong extension", []string{".jpg"}, false},
		{"exact media type", []string{"image/png"}, true},
		{"media type with parameters", []string{"image/png; charset=binary"}, true},
		{"family wildcard", []string{"image/*"}, true},
		{"wrong family", []string{"video/*"}, false},
		{"mixed entries", []string{".gif", "video/*", "image/png"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeAllowed(path, tt.allowed); got != tt.want {
				t.Errorf("TypeAllowed(%v) = %v, want %v", tt.allowed, got, tt.want)
			}
		})
	}
}

func TestTypeAllowedWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if TypeAllowed(path, []string{".png"}) {
		t.Error("extension entry must not match a name without extension")
	}
	if !TypeAllowed(path, []string{"image/png"}) {
		t.Error("media type entry should match sniffed content")
	}
}
