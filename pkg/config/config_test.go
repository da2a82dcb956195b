package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Thresholds.MethodCyclomatic != 40 || cfg.Thresholds.MethodCognitive != 15 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Output.Format != "text" || !cfg.Output.Color {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "haruspex.toml")
	content := `
[analysis]
workers = 4
include_synthetic = true

[thresholds]
method_cyclomatic = 25

[exclude]
classes = ["com/example/generated/*"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.Workers != 4 || !cfg.Analysis.IncludeSynthetic {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Thresholds.MethodCyclomatic != 25 {
		t.Errorf("method_cyclomatic = %d, want 25", cfg.Thresholds.MethodCyclomatic)
	}
	// Untouched keys keep their defaults.
	if cfg.Thresholds.MethodCognitive != 15 {
		t.Errorf("method_cognitive = %d, want default 15", cfg.Thresholds.MethodCognitive)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "haruspex.yaml")
	content := `
output:
  format: json
  color: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output.Format != "json" || cfg.Output.Color {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestShouldExclude(t *testing.T) {
	cfg := Default()
	cfg.Exclude.Classes = []string{"com/example/gen/*"}

	tests := []struct {
		class string
		want  bool
	}{
		{"java/lang/String", true},
		{"javax/servlet/Filter", true},
		{"com/example/gen/Stub", true},
		{"com/example/App", false},
		{"org/acme/Service", false},
	}
	for _, tt := range tests {
		if got := cfg.ShouldExclude(tt.class); got != tt.want {
			t.Errorf("ShouldExclude(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}
