package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"weixiang/pkg/config"
	"weixiang/pkg/game"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, config.FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultsMatchRules(t *testing.T) {
	cfg := config.Default()
	if !reflect.DeepEqual(cfg.Rules(), game.DefaultRules()) {
		t.Fatalf("default config rules differ: %+v", cfg.Rules())
	}
	if cfg.Liveness() != 100*time.Millisecond || cfg.EstimateTimeout() != 2*time.Second || cfg.QuitTimeout() != 3*time.Second {
		t.Fatalf("unexpected timeouts: %s %s %s", cfg.Liveness(), cfg.EstimateTimeout(), cfg.QuitTimeout())
	}
}

func TestLoadConfigOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"engine": "bin/katago", "engine_args": ["gtp"], "win_threshold": 200, "language": "zh-CN"}`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.WinThreshold != 200 || cfg.HistoryCap != 50 {
		t.Fatalf("unexpected rules: %+v", cfg.Rules())
	}
	enginePath, err := cfg.EnginePath()
	if err != nil {
		t.Fatalf("failed to resolve engine: %v", err)
	}
	if enginePath != filepath.Join(dir, "bin", "katago") {
		t.Fatalf("unexpected engine path: %s", enginePath)
	}
	if cfg.Tag() != language.SimplifiedChinese {
		t.Fatalf("unexpected language: %s", cfg.Tag())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{"listen": ":9000", "history_cap": 10}`)
	t.Setenv("WEIXIANG_LISTEN", "127.0.0.1:7000")
	t.Setenv("WEIXIANG_ENGINE_ARGS", "gtp -model m.bin.gz")
	t.Setenv("WEIXIANG_QUIT_MILLIS", "500")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Listen != "127.0.0.1:7000" {
		t.Fatalf("env should win over file, got %s", cfg.Listen)
	}
	if cfg.HistoryCap != 10 {
		t.Fatalf("unset env should keep file value, got %d", cfg.HistoryCap)
	}
	if !reflect.DeepEqual(cfg.EngineArgs, []string{"gtp", "-model", "m.bin.gz"}) {
		t.Fatalf("unexpected engine args: %v", cfg.EngineArgs)
	}
	if cfg.QuitTimeout() != 500*time.Millisecond {
		t.Fatalf("unexpected quit timeout: %s", cfg.QuitTimeout())
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("WEIXIANG_WIN_THRESHOLD", "lots")
	cfg := config.Default()
	err := config.ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestFindConfigPathWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{}`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get cwd: %v", err)
	}
	if err := os.Chdir(nested); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(prev) })

	path, dir, err := config.FindConfigPath()
	if err != nil {
		t.Fatalf("failed to find config: %v", err)
	}
	// TempDir may sit behind a symlink.
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(dir)
	if got != want || filepath.Base(path) != config.FileName {
		t.Fatalf("unexpected config location: %s in %s", path, dir)
	}
}
