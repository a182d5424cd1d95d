package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"machine_monitor/internal/fleet"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	// no configs/ directory here
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DB.Path != "app.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Simulation.Tick != time.Second {
		t.Fatalf("tick = %s, want 1s", cfg.Simulation.Tick)
	}
	def := fleet.DefaultConfig()
	if cfg.Simulation.FailureProbability != def.FailureProbability {
		t.Fatalf("failure probability = %v", cfg.Simulation.FailureProbability)
	}
	if len(cfg.Simulation.Machines) != 4 || cfg.Simulation.Machines[0] != "I30" {
		t.Fatalf("machines = %v", cfg.Simulation.Machines)
	}
	if len(cfg.Simulation.Faults) != len(def.Faults) {
		t.Fatalf("faults = %v", cfg.Simulation.Faults)
	}
	if cfg.Simulation.HistoryWindow != 500 {
		t.Fatalf("history window = %d", cfg.Simulation.HistoryWindow)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
log:
  level: WARN
simulation:
  tick: 250ms
  seed: 42
  failure_probability: 0.5
  machines: [A, B]
  faults: ["Jam"]
  history_window: 0
auth:
  signing_key: s3cret
  token_ttl: 30m
`)
	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	sim := cfg.Simulation
	if sim.Tick != 250*time.Millisecond || sim.Seed != 42 || sim.FailureProbability != 0.5 || sim.HistoryWindow != 0 {
		t.Fatalf("unexpected simulation cfg: %+v", sim)
	}
	fc := sim.Fleet()
	if len(fc.Machines) != 2 || fc.Machines[1] != "B" || fc.Faults[0] != "Jam" {
		t.Fatalf("unexpected fleet cfg: %+v", fc)
	}
	if cfg.Auth.SigningKey != "s3cret" || cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected auth cfg: %+v", cfg.Auth)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MONITOR_SIMULATION_TICK", "2s")
	t.Setenv("MONITOR_PORT", "7000")
	path := writeConfig(t, "port: \"9090\"\n")

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.Simulation.Tick != 2*time.Second {
		t.Fatalf("env override not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		is   error
	}{
		{"zero tick", "simulation:\n  tick: 0s\n", nil},
		{"bad probability", "simulation:\n  failure_probability: 2\n", fleet.ErrInvalidConfig},
		{"duplicate machines", "simulation:\n  machines: [A, A]\n", fleet.ErrInvalidConfig},
		{"negative history window", "simulation:\n  history_window: -1\n", nil},
		{"empty signing key", "auth:\n  signing_key: \"\"\n", errEmptySigningKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(New(), writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Fatalf("error %v does not wrap %v", err, tc.is)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}
