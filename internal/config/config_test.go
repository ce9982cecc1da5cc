package config

import (
	"os"
	"testing"
)

func TestLoad_MatchingDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Matching.Thresholds.SingleSample != 0.45 {
		t.Errorf("single_sample threshold = %v, want 0.45", cfg.Matching.Thresholds.SingleSample)
	}
	if cfg.Matching.Thresholds.FewSamples != 0.50 {
		t.Errorf("few_samples threshold = %v, want 0.50", cfg.Matching.Thresholds.FewSamples)
	}
	if cfg.Matching.Thresholds.ManySamples != 0.55 {
		t.Errorf("many_samples threshold = %v, want 0.55", cfg.Matching.Thresholds.ManySamples)
	}
	if cfg.Matching.ManySamplesAt != 4 {
		t.Errorf("many_samples_at = %d, want 4", cfg.Matching.ManySamplesAt)
	}
}

func TestLoad_DetectorDefaults(t *testing.T) {
	os.Unsetenv("DETECTOR_URL")
	os.Unsetenv("DETECTOR_FAST_ENDPOINT")
	os.Unsetenv("DETECTOR_ACCURATE_ENDPOINT")

	cfg := Load()

	if cfg.Detector.URL != "http://localhost:8000" {
		t.Errorf("detector URL = %q, want default", cfg.Detector.URL)
	}
	if cfg.Detector.FastEndpoint != "/detect/fast" {
		t.Errorf("fast endpoint = %q, want /detect/fast", cfg.Detector.FastEndpoint)
	}
	if cfg.Detector.AccurateEndpoint != "/detect/accurate" {
		t.Errorf("accurate endpoint = %q, want /detect/accurate", cfg.Detector.AccurateEndpoint)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DETECTOR_URL", "http://detector:9000")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")

	cfg := Load()

	if cfg.Detector.URL != "http://detector:9000" {
		t.Errorf("detector URL = %q, want override", cfg.Detector.URL)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("max open conns = %d, want 10", cfg.Database.MaxOpenConns)
	}
}

func TestEnvInt_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset", value: "", want: 25},
		{name: "not a number", value: "abc", want: 25},
		{name: "negative", value: "-3", want: 25},
		{name: "valid", value: "7", want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("PF_TEST_INT", tt.value)
			} else {
				os.Unsetenv("PF_TEST_INT")
			}
			if got := envInt("PF_TEST_INT", 25); got != tt.want {
				t.Errorf("envInt = %d, want %d", got, tt.want)
			}
		})
	}
}
