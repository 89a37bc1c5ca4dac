package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("COOLDOWN_SECONDS")
	os.Unsetenv("STRICT_ALTERNATION")
	os.Unsetenv("DETECTOR_DIM")
	os.Unsetenv("MATCH_DISTANCE_THRESHOLD")

	cfg := Load()

	if cfg.Attendance.Cooldown != 60*time.Second {
		t.Errorf("expected default cooldown 60s, got %v", cfg.Attendance.Cooldown)
	}

	if cfg.Attendance.StrictAlternation {
		t.Error("expected strict alternation disabled by default")
	}

	if cfg.Detector.Dim != 512 {
		t.Errorf("expected default embedding dim 512, got %d", cfg.Detector.Dim)
	}

	if cfg.Gallery.DistanceThreshold != 0.5 {
		t.Errorf("expected default distance threshold 0.5, got %f", cfg.Gallery.DistanceThreshold)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("COOLDOWN_SECONDS", "120")
	t.Setenv("STRICT_ALTERNATION", "true")
	t.Setenv("STORE_TIMEOUT_SECONDS", "3")

	cfg := Load()

	if cfg.Attendance.Cooldown != 120*time.Second {
		t.Errorf("expected cooldown 120s, got %v", cfg.Attendance.Cooldown)
	}

	if !cfg.Attendance.StrictAlternation {
		t.Error("expected strict alternation enabled")
	}

	if cfg.Store.Timeout != 3*time.Second {
		t.Errorf("expected store timeout 3s, got %v", cfg.Store.Timeout)
	}
}

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "not-a-number")

	if got := envInt("TEST_ENV_INT", 42); got != 42 {
		t.Errorf("expected fallback 42, got %d", got)
	}

	t.Setenv("TEST_ENV_INT", "-5")

	if got := envInt("TEST_ENV_INT", 42); got != 42 {
		t.Errorf("expected fallback 42 for negative value, got %d", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL", "1")

	if !envBool("TEST_ENV_BOOL", false) {
		t.Error("expected true for '1'")
	}

	t.Setenv("TEST_ENV_BOOL", "nope")

	if envBool("TEST_ENV_BOOL", true) != true {
		t.Error("expected fallback for unparseable value")
	}
}

func TestGetModelPricing_Known(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gpt-4.1-mini")

	if pricing.Standard.Input == 0 {
		t.Error("expected non-zero input pricing for gpt-4.1-mini")
	}
}

func TestGetModelPricing_Unknown(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("no-such-model")

	if pricing.Standard.Input != 0 || pricing.Standard.Output != 0 {
		t.Error("expected zero pricing for unknown model")
	}
}
