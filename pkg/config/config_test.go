package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ngoyal88/quip/pkg/humor"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quip.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
humor:
  level: savage
  frequency: 75
cache:
  size: 10
  max_age: 5m
remote:
  provider: gemini
  api_key: g-key
  timeout_ms: 2500
  prefer_local: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HumorLevel() != humor.LevelSavage {
		t.Errorf("HumorLevel() = %v", cfg.HumorLevel())
	}
	if cfg.Humor.Frequency != 75 || !cfg.Humor.Enabled {
		t.Errorf("Humor = %+v", cfg.Humor)
	}
	if cfg.Cache.Size != 10 || cfg.Cache.MaxAge != 5*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Remote.Provider != "gemini" || cfg.Remote.APIKey != "g-key" || !cfg.Remote.PreferLocal {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
	if cfg.Remote.Timeout() != 2500*time.Millisecond {
		t.Errorf("Timeout() = %v", cfg.Remote.Timeout())
	}
	if !cfg.Remote.FallbackToLocal {
		t.Error("FallbackToLocal default lost")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
	if cfg.Cache.Size != 100 || cfg.Remote.TimeoutMS != 5000 || cfg.Humor.Frequency != 30 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("QUIP_HUMOR_LEVEL", "mild")
	t.Setenv("QUIP_CACHE_SIZE", "7")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(writeConfig(t, "humor:\n  level: savage\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HumorLevel() != humor.LevelMild {
		t.Errorf("HumorLevel() = %v, want mild", cfg.HumorLevel())
	}
	if cfg.Cache.Size != 7 {
		t.Errorf("Cache.Size = %d, want 7", cfg.Cache.Size)
	}
	if cfg.Remote.APIKey != "sk-env" {
		t.Errorf("APIKey = %q, want provider env fallback", cfg.Remote.APIKey)
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Humor.Level = "spicy"
	cfg.Humor.Frequency = 101
	cfg.Cache.Size = -1
	cfg.Remote.TimeoutMS = 999

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	for _, field := range []string{"humor.level", "humor.frequency", "cache.size", "remote.timeout_ms"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Validate() error missing %s: %v", field, err)
		}
	}
}

func TestValidateDefaults(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "remote:\n  timeout_ms: 10\n")); err == nil {
		t.Fatal("Load() accepted timeout_ms below minimum")
	}
}

func TestRedisJournalRequiresRedis(t *testing.T) {
	cfg := Default()
	cfg.Journal.Enabled = true
	cfg.Journal.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() accepted redis journal without redis")
	}
	cfg.Redis.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore(Default())
	got := s.Get()
	got.Humor.Level = "savage"
	if s.Get().Humor.Level != "medium" {
		t.Error("Store.Get() exposed internal state")
	}
}

func TestLoadAndWatchReloads(t *testing.T) {
	path := writeConfig(t, "humor:\n  frequency: 10\n")

	changes := make(chan Config, 4)
	store, err := LoadAndWatch(path, func(c Config) { changes <- c })
	if err != nil {
		t.Fatalf("LoadAndWatch() error = %v", err)
	}
	if store.Get().Humor.Frequency != 10 {
		t.Fatalf("Frequency = %d", store.Get().Humor.Frequency)
	}

	if err := os.WriteFile(path, []byte("humor:\n  frequency: 90\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Humor.Frequency == 90 {
				if store.Get().Humor.Frequency != 90 {
					t.Error("store not updated")
				}
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
