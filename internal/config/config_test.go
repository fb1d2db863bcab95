package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if conf.Listen != ":8080" || conf.PollIntervalSeconds != 30 {
		t.Fatalf("unexpected defaults: %+v", conf)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen: \":9000\"\npoll_interval_seconds: 5\ndatabase_url: postgres://file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("PORT", "")

	conf, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Listen != ":9000" {
		t.Errorf("listen = %q, want :9000", conf.Listen)
	}
	if conf.PollIntervalSeconds != 5 {
		t.Errorf("poll interval = %d, want 5", conf.PollIntervalSeconds)
	}
	if conf.DatabaseURL != "postgres://env" {
		t.Errorf("database_url = %q, env override lost", conf.DatabaseURL)
	}
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("poll_interval_seconds: -3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	conf, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.PollIntervalSeconds != 30 {
		t.Errorf("poll interval = %d, want fallback 30", conf.PollIntervalSeconds)
	}
}
