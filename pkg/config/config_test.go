package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Addr    string        `split_words:"true" default:":8080"`
	Timeout time.Duration `split_words:"true" default:"5s"`
	Name    string        `split_words:"true"`
}

func TestExportEnvironmentKeepsExistingVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "CFGTEST_ADDR=:9090\nCFGTEST_NAME=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFGTEST_NAME", "from-env")
	os.Unsetenv("CFGTEST_ADDR")
	t.Cleanup(func() { os.Unsetenv("CFGTEST_ADDR") })

	if err := exportEnvironment(path); err != nil {
		t.Fatalf("exportEnvironment() error = %v", err)
	}
	if got := os.Getenv("CFGTEST_ADDR"); got != ":9090" {
		t.Fatalf("CFGTEST_ADDR = %q, want :9090", got)
	}
	if got := os.Getenv("CFGTEST_NAME"); got != "from-env" {
		t.Fatalf("CFGTEST_NAME = %q, want from-env", got)
	}
}

func TestNewAppliesDefaultsAndPrefix(t *testing.T) {
	t.Setenv("CFGNEW_TIMEOUT", "2s")

	conf, err := New[sampleConfig]("CFGNEW")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if conf.Addr != ":8080" || conf.Timeout != 2*time.Second || conf.Name != "" {
		t.Fatalf("unexpected config: %+v", conf)
	}
}

func TestNewReportsInvalidValues(t *testing.T) {
	t.Setenv("CFGBAD_TIMEOUT", "soon")

	if _, err := New[sampleConfig]("CFGBAD"); err == nil {
		t.Fatalf("New() error = nil, want parse error")
	}
}

func TestExportEnvironmentIfExistsIgnoresMissingFile(t *testing.T) {
	if err := exportEnvironmentIfExists(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("exportEnvironmentIfExists() error = %v", err)
	}
}
