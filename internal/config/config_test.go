package config

import (
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Auth: AuthConfig{JWTSecret: "test-secret"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		cfg.ApplyDefaults()

		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database.addrs")
	}
}

func TestValidate_MissingJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.JWTSecret = ""
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing auth.jwt_secret")
	}
}

func TestValidate_SearchLimitsInverted(t *testing.T) {
	cfg := validConfig()
	cfg.Search.DefaultLimit = 500
	cfg.Search.MaxLimit = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default_limit exceeds max_limit")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Database.KeyPrefix != "promemo:" {
		t.Errorf("key_prefix default: got %q", cfg.Database.KeyPrefix)
	}
	if cfg.Auth.TokenTTLMin != 24*60 {
		t.Errorf("token_ttl_min default: got %d", cfg.Auth.TokenTTLMin)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 100 || cfg.Search.SuggestionsLimit != 10 {
		t.Errorf("search defaults: got %+v", cfg.Search)
	}
	if cfg.Export.MaxImportRecords != 1000 {
		t.Errorf("max_import_records default: got %d", cfg.Export.MaxImportRecords)
	}
	if cfg.Cache.DefaultTTL != 60 {
		t.Errorf("cache default_ttl_sec default: got %d", cfg.Cache.DefaultTTL)
	}
	if cfg.Jobs.NotificationCleanupMin != 60 || cfg.Jobs.NotificationMaxAgeDays != 30 || cfg.Jobs.CacheSweepMin != 24*60 {
		t.Errorf("jobs defaults: got %+v", cfg.Jobs)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Database.KeyPrefix = "custom:"
	cfg.Search.MaxLimit = 250
	cfg.ApplyDefaults()

	if cfg.Database.KeyPrefix != "custom:" {
		t.Errorf("explicit key_prefix overwritten: %q", cfg.Database.KeyPrefix)
	}
	if cfg.Search.MaxLimit != 250 {
		t.Errorf("explicit max_limit overwritten: %d", cfg.Search.MaxLimit)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PROMEMO_TEST_SECRET", "from-env")

	in := []byte("secret: ${PROMEMO_TEST_SECRET}\nport: ${PROMEMO_TEST_MISSING:-8080}\nempty: ${PROMEMO_TEST_MISSING}")
	got := string(expandEnvVars(in))

	want := "secret: from-env\nport: 8080\nempty: "
	if got != want {
		t.Errorf("expansion mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}
