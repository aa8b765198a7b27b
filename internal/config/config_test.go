package config

import (
	"flag"
	"testing"
)

func parseForTest(t *testing.T, args ...string) AppConfig {
	t.Helper()
	cfg, err := parseWith(flag.NewFlagSet("test", flag.ContinueOnError), args)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return cfg
}

func TestParseDefaults(t *testing.T) {
	cfg := parseForTest(t)
	if cfg.Endpoint != "" {
		t.Fatalf("endpoint should stay empty for the client default, got %q", cfg.Endpoint)
	}
	if cfg.ExportDir != "exports" {
		t.Fatalf("export dir = %q", cfg.ExportDir)
	}
	if len(cfg.AttachPaths) != 0 {
		t.Fatalf("unexpected attach paths: %v", cfg.AttachPaths)
	}
}

func TestParseFlagBeatsEnv(t *testing.T) {
	t.Setenv("DOCDECK_API", "http://env.test")
	cfg := parseForTest(t, "-endpoint", "http://flag.test")
	if cfg.Endpoint != "http://flag.test" {
		t.Fatalf("flag should win over env, got %q", cfg.Endpoint)
	}
}

func TestParseEnvFallback(t *testing.T) {
	t.Setenv("DOCDECK_API", "http://env.test")
	cfg := parseForTest(t)
	if cfg.Endpoint != "http://env.test" {
		t.Fatalf("env fallback ignored, got %q", cfg.Endpoint)
	}
}

func TestParsePositionalAttachments(t *testing.T) {
	cfg := parseForTest(t, "-no-alt-screen", "a.pdf", "b.pdf")
	if !cfg.NoAltScreen {
		t.Fatal("no-alt-screen flag not set")
	}
	if len(cfg.AttachPaths) != 2 || cfg.AttachPaths[0] != "a.pdf" || cfg.AttachPaths[1] != "b.pdf" {
		t.Fatalf("unexpected attach paths: %v", cfg.AttachPaths)
	}
}
