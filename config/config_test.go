package config

import (
	"testing"
	"time"
)

func TestLoadMemoryDefaults(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", " Memory ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("driver = %q", cfg.StorageDriver)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.MatchDefaultRadiusKm != 5 || cfg.WorkloadCacheTTL != 30*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.MatchMaxRadiusKm != 0 {
		t.Fatalf("search radius must be unbounded by default, got %v", cfg.MatchMaxRadiusKm)
	}
	if cfg.SessionEventStream != "session:events" || cfg.SessionEventWorkers != 2 {
		t.Fatalf("event defaults not applied: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("SUPABASE_JWT_ISSUER", "https://auth.example.com")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PORT", "9000")
	t.Setenv("MATCH_DEFAULT_RADIUS_KM", "12.5")
	t.Setenv("WORKLOAD_CACHE_TTL", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.MatchDefaultRadiusKm != 12.5 || cfg.WorkloadCacheTTL != time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.JWT.Issuer != "https://auth.example.com" {
		t.Fatalf("jwt issuer = %q", cfg.JWT.Issuer)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"STORAGE_DRIVER": "memory"}},
		{"external without uris", map[string]string{"SUPABASE_JWT_SECRET": "s"}},
		{"unknown driver", map[string]string{"SUPABASE_JWT_SECRET": "s", "STORAGE_DRIVER": "sqlite"}},
		{"bad duration", map[string]string{"SUPABASE_JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "WORKLOAD_CACHE_TTL": "soon"}},
		{"default above max", map[string]string{"SUPABASE_JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "MATCH_DEFAULT_RADIUS_KM": "200"}},
		{"no workers", map[string]string{"SUPABASE_JWT_SECRET": "s", "STORAGE_DRIVER": "memory", "SESSION_EVENT_WORKERS": "0"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range []string{"SUPABASE_JWT_SECRET", "STORAGE_DRIVER", "POSTGRES_URI", "MONGO_URI", "REDIS_ADDR"} {
				t.Setenv(k, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}
