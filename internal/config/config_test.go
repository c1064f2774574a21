package config

import (
	"flag"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"GEOCOIN_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("GEOCOIN_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseServer_EnvThenFlags(t *testing.T) {
	t.Setenv("GEOCOIN_DATA_DIR", "/tmp/geo")
	t.Setenv("GEOCOIN_STORE", "sqlite")

	cfg, err := ParseServer(newFlagSet(), []string{"-addr", ":9999"})
	if err != nil {
		t.Fatalf("ParseServer: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.DataDir != "/tmp/geo" || cfg.StoreBackend != "sqlite" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := cfg.StorePath(); got != filepath.Join("/tmp/geo", "store.sqlite") {
		t.Fatalf("store path %q", got)
	}
	if got := cfg.SnapshotsDir(); got != filepath.Join("/tmp/geo", "snapshots") {
		t.Fatalf("snapshots dir %q", got)
	}
	if got := cfg.TuningFile(); got != filepath.Join("./configs", "tuning.yaml") {
		t.Fatalf("tuning file %q", got)
	}

	cfg, err = ParseServer(newFlagSet(), []string{"-store", "file", "-snapshot_dir", "/snaps", "-tuning", "t.yaml"})
	if err != nil {
		t.Fatalf("ParseServer: %v", err)
	}
	if cfg.StoreBackend != "file" || cfg.SnapshotsDir() != "/snaps" || cfg.TuningFile() != "t.yaml" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestParseServer_RejectsUnknownBackends(t *testing.T) {
	if _, err := ParseServer(newFlagSet(), []string{"-store", "redis"}); err == nil {
		t.Fatal("expected store backend error")
	}
	t.Setenv("GEOCOIN_INDEX_BACKEND", "d1")
	if _, err := ParseServer(newFlagSet(), nil); err == nil {
		t.Fatal("expected index backend error")
	}
}

func TestAdminEnabled(t *testing.T) {
	cases := []struct {
		deploy, admin string
		want          bool
	}{
		{"", "", true},
		{"production", "", false},
		{"Staging", "", false},
		{"production", "true", true},
		{"", "0", false},
		{"dev", "garbage", true},
	}
	for _, tc := range cases {
		c := Server{DeployEnv: tc.deploy, AdminHTTP: tc.admin}
		if got := c.AdminEnabled(); got != tc.want {
			t.Fatalf("deploy=%q admin=%q: got %v want %v", tc.deploy, tc.admin, got, tc.want)
		}
	}
}

func TestParsePlay(t *testing.T) {
	t.Setenv("GEOCOIN_CLIENT_NAME", "alice")
	cfg, err := ParsePlay(newFlagSet(), []string{"-url", "ws://example:1/v1/ws"})
	if err != nil {
		t.Fatalf("ParsePlay: %v", err)
	}
	if cfg.Name != "alice" || cfg.URL != "ws://example:1/v1/ws" {
		t.Fatalf("unexpected: %+v", cfg)
	}
}
