package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SPLICE_API_KEY", "INCLUDE_DIRS", "PATHSTORE_URL", "PATHSTORE_PREFIX", "WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_REQUEST_BYTES", "MAX_INCLUDE_DEPTH", "PRAGMA_ONCE", "JOB_TTL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("pool defaults = %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.MaxIncludeDepth != 64 {
		t.Errorf("MaxIncludeDepth = %d", cfg.MaxIncludeDepth)
	}
	if cfg.PragmaOnce {
		t.Error("PragmaOnce should default to false")
	}
	if cfg.IncludeDirs != nil {
		t.Errorf("IncludeDirs = %v", cfg.IncludeDirs)
	}
	if cfg.PathstorePrefix != "sources" {
		t.Errorf("PathstorePrefix = %q", cfg.PathstorePrefix)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("INCLUDE_DIRS", " /usr/include, ./vendor ,,")
	t.Setenv("WORKER_COUNT", "-1")
	t.Setenv("MAX_INCLUDE_DEPTH", "0")
	t.Setenv("PRAGMA_ONCE", "true")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("MAX_REQUEST_BYTES", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if len(cfg.IncludeDirs) != 2 || cfg.IncludeDirs[0] != "/usr/include" || cfg.IncludeDirs[1] != "./vendor" {
		t.Errorf("IncludeDirs = %v", cfg.IncludeDirs)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("negative WORKER_COUNT should fall back, got %d", cfg.WorkerCount)
	}
	if cfg.MaxIncludeDepth != 0 {
		t.Errorf("MAX_INCLUDE_DEPTH=0 means unlimited, got %d", cfg.MaxIncludeDepth)
	}
	if !cfg.PragmaOnce {
		t.Error("PragmaOnce should be true")
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("JobTTL = %v", cfg.JobTTL)
	}
	if cfg.MaxRequestBytes != 10485760 {
		t.Errorf("MaxRequestBytes = %d", cfg.MaxRequestBytes)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.h")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := (Config{}).Validate(); err == nil {
		t.Error("expected error without SPLICE_API_KEY")
	}
	if err := (Config{SpliceAPIKey: "k", IncludeDirs: []string{dir}}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Config{SpliceAPIKey: "k", IncludeDirs: []string{file}}).Validate(); err == nil {
		t.Error("expected error for include dir that is a file")
	}
	if err := (Config{SpliceAPIKey: "k", IncludeDirs: []string{filepath.Join(dir, "nope")}}).Validate(); err == nil {
		t.Error("expected error for missing include dir")
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SPLICE_DOTENV_A=from-file\nSPLICE_DOTENV_B=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPLICE_DOTENV_A", "")
	os.Unsetenv("SPLICE_DOTENV_A")
	t.Setenv("SPLICE_DOTENV_B", "from-env")
	t.Cleanup(func() { os.Unsetenv("SPLICE_DOTENV_A") })

	if err := LoadDotenv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("SPLICE_DOTENV_A"); got != "from-file" {
		t.Errorf("A = %q", got)
	}
	if got := os.Getenv("SPLICE_DOTENV_B"); got != "from-env" {
		t.Errorf("existing variable overridden: B = %q", got)
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "splice.yaml")
	t.Setenv("SPLICE_TEST_TOKEN", "tok")
	content := `root: src/main.c
include_dirs:
  - include
  - /opt/include
bundles:
  - shaders.md
pragma_once: true
max_depth: 16
remote:
  url: http://localhost:8080
  api_key: ${SPLICE_TEST_TOKEN}
  prefix: proj
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Root != filepath.Join(dir, "src/main.c") {
		t.Errorf("Root = %q", p.Root)
	}
	if len(p.IncludeDirs) != 2 || p.IncludeDirs[0] != filepath.Join(dir, "include") || p.IncludeDirs[1] != "/opt/include" {
		t.Errorf("IncludeDirs = %v", p.IncludeDirs)
	}
	if len(p.Bundles) != 1 || p.Bundles[0] != filepath.Join(dir, "shaders.md") {
		t.Errorf("Bundles = %v", p.Bundles)
	}
	if !p.PragmaOnce || p.MaxDepth != 16 {
		t.Errorf("PragmaOnce=%v MaxDepth=%d", p.PragmaOnce, p.MaxDepth)
	}
	if p.Remote.URL != "http://localhost:8080" || p.Remote.APIKey != "tok" || p.Remote.Prefix != "proj" {
		t.Errorf("Remote = %+v", p.Remote)
	}
}

func TestLoadProject_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splice.yaml")
	if err := os.WriteFile(path, []byte("root: a.c\nincludes: [x]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadProject_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splice.yaml")
	_, err := LoadProject(path)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	p, err := LoadProjectOrDefault(path)
	if err != nil {
		t.Fatalf("LoadProjectOrDefault: %v", err)
	}
	if p.Root != "" || p.MaxDepth != 0 {
		t.Errorf("expected empty project, got %+v", p)
	}
}
