package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "local.config.yaml", `
meta:
  id: local-gallery
  name: Local Gallery
  enabled: true
gallery:
  writer:
    type: filesystem
    filesystem:
      root: /media/gallery
  quality: 85
  skip_if_exists: true
`)

	if err := LoadConfigs(dir); err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}

	cfg, err := GetConfig("local-gallery")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Meta.Name != "Local Gallery" {
		t.Errorf("name = %q, want Local Gallery", cfg.Meta.Name)
	}
	if cfg.Gallery.Writer.Type != "filesystem" {
		t.Errorf("writer type = %q, want filesystem", cfg.Gallery.Writer.Type)
	}
	if cfg.Gallery.Writer.Filesystem.Root != "/media/gallery" {
		t.Errorf("root = %q, want /media/gallery", cfg.Gallery.Writer.Filesystem.Root)
	}
	if cfg.Gallery.Quality != 85 {
		t.Errorf("quality = %d, want 85", cfg.Gallery.Quality)
	}
	if !cfg.Gallery.SkipIfExists {
		t.Error("expected skip_if_exists to be true")
	}

	if got := len(ListConfigs()); got != 1 {
		t.Errorf("ListConfigs = %d, want 1", got)
	}
}

func TestLoadConfigsExpandsEnv(t *testing.T) {
	t.Setenv("GALLERY_BUCKET", "family-photos")

	dir := t.TempDir()
	writeConfig(t, dir, "s3.config.yaml", `
meta:
  id: s3-gallery
  enabled: true
gallery:
  writer:
    type: s3
    s3:
      bucket: ${GALLERY_BUCKET}
      region: eu-central-1
`)

	if err := LoadConfigs(dir); err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}

	cfg, err := GetConfig("s3-gallery")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Gallery.Writer.S3.Bucket != "family-photos" {
		t.Errorf("bucket = %q, want family-photos", cfg.Gallery.Writer.S3.Bucket)
	}
}

func TestLoadConfigsMissingID(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "broken.config.yaml", `
meta:
  name: No ID Here
`)

	err := LoadConfigs(dir)
	if err == nil {
		t.Fatal("expected error for missing meta.id")
	}
	if !strings.Contains(err.Error(), "meta.id") {
		t.Errorf("error = %v, want mention of meta.id", err)
	}
}

func TestLoadConfigsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "a.config.yaml", "meta:\n  id: twin\n")
	writeConfig(t, dir, "b.config.yaml", "meta:\n  id: twin\n")

	if err := LoadConfigs(dir); err == nil {
		t.Fatal("expected error for duplicate config ID")
	}
}

func TestLoadConfigsIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "notes.txt", "not a config")
	writeConfig(t, dir, "lonely.yaml", "meta:\n  id: ignored\n")
	writeConfig(t, dir, "real.config.yaml", "meta:\n  id: real\n  enabled: true\n")

	if err := LoadConfigs(dir); err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}
	if got := len(ListConfigs()); got != 1 {
		t.Errorf("ListConfigs = %d, want 1", got)
	}
}

func TestTemplateMerge(t *testing.T) {
	dir := t.TempDir()
	templates := filepath.Join(dir, "templates")
	if err := os.MkdirAll(templates, 0755); err != nil {
		t.Fatalf("mkdir templates: %v", err)
	}
	writeConfig(t, templates, "defaults.yaml", `
gallery:
  writer:
    type: filesystem
  quality: 80
journal:
  enabled: true
  storage_type: file
  retention_days: 30
`)
	writeConfig(t, dir, "phone.config.yaml", `
meta:
  id: phone
  enabled: true
  template: defaults
gallery:
  writer:
    filesystem:
      root: /media/phone
`)

	if err := LoadConfigs(dir); err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}

	cfg, err := GetConfig("phone")
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Gallery.Quality != 80 {
		t.Errorf("quality = %d, want 80 from template", cfg.Gallery.Quality)
	}
	if cfg.Gallery.Writer.Type != "filesystem" {
		t.Errorf("writer type = %q, want filesystem from template", cfg.Gallery.Writer.Type)
	}
	if cfg.Gallery.Writer.Filesystem.Root != "/media/phone" {
		t.Errorf("root = %q, want /media/phone from config", cfg.Gallery.Writer.Filesystem.Root)
	}
	if !cfg.Journal.Enabled {
		t.Error("expected journal enabled from template")
	}
	if cfg.Journal.RetentionDays != 30 {
		t.Errorf("retention = %d, want 30 from template", cfg.Journal.RetentionDays)
	}
}

func TestUnknownTemplate(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "phone.config.yaml", `
meta:
  id: phone
  template: missing
`)

	if err := LoadConfigs(dir); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestGetEnabledConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "on.config.yaml", "meta:\n  id: on\n  enabled: true\n")
	writeConfig(t, dir, "off.config.yaml", "meta:\n  id: off\n  enabled: false\n")

	if err := LoadConfigs(dir); err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}

	enabled := GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("enabled = %d, want 1", len(enabled))
	}
	if enabled[0].Meta.ID != "on" {
		t.Errorf("enabled config = %q, want on", enabled[0].Meta.ID)
	}
}

func TestStagingDirCreated(t *testing.T) {
	dir := t.TempDir()
	stagingDir := filepath.Join(dir, "work", "staging")
	writeConfig(t, dir, "st.config.yaml", `
meta:
  id: st
staging:
  dir: `+stagingDir+`
`)

	if err := LoadConfigs(dir); err != nil {
		t.Fatalf("LoadConfigs: %v", err)
	}
	if _, err := os.Stat(stagingDir); err != nil {
		t.Errorf("expected staging dir to be created: %v", err)
	}
}
