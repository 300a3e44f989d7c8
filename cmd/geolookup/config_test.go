package main

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"GEOLOOKUP_ADDR", "GEOLOOKUP_DATA_DIR", "GEOLOOKUP_DOWNLOAD", "GEOLOOKUP_CACHE_TTL", "GEOLOOKUP_SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg, err := configFromEnv()
	if err != nil {
		t.Fatalf("configFromEnv() error = %v", err)
	}
	if cfg != defaultServerConfig() {
		t.Errorf("configFromEnv() = %+v, want defaults %+v", cfg, defaultServerConfig())
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GEOLOOKUP_ADDR", "127.0.0.1:9090")
	t.Setenv("GEOLOOKUP_DATA_DIR", "/var/lib/geolookup")
	t.Setenv("GEOLOOKUP_DOWNLOAD", "false")
	t.Setenv("GEOLOOKUP_CACHE_TTL", "0")
	t.Setenv("GEOLOOKUP_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := configFromEnv()
	if err != nil {
		t.Fatalf("configFromEnv() error = %v", err)
	}
	want := config{
		Addr:            "127.0.0.1:9090",
		DataDir:         "/var/lib/geolookup",
		Download:        false,
		CacheTTL:        0,
		ShutdownTimeout: 30 * time.Second,
	}
	if cfg != want {
		t.Errorf("configFromEnv() = %+v, want %+v", cfg, want)
	}
}

func TestConfigFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"GEOLOOKUP_DOWNLOAD", "maybe"},
		{"GEOLOOKUP_CACHE_TTL", "5 minutes"},
		{"GEOLOOKUP_SHUTDOWN_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := configFromEnv()
			if err == nil {
				t.Fatalf("configFromEnv() with %s=%q: expected error", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("warn", "json", &buf)
	l.Info("dropped")
	l.Warn("kept", "k", "v")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("json output = %s", out)
	}

	buf.Reset()
	newLogger("", "", &buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %s", buf.String())
	}
}
