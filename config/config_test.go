package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `battery:
  capacity_kwh: 5.0
  min_soc: 0.15
  max_soc: 0.9
  max_discharge_kw: 3.68
  max_charge_kw: 2.5
  efficiency: 0.9
tariff:
  start_soc: 0.15
  end_soc: 0.15
  tax_rate: 0.21
  fixed_tax_per_kwh: 0.15
  cutoff: 0.2
netmetering:
  start_soc: 0.15
  end_soc: 0.15
  days: 3
horizon:
  prices: [0.1, 0.2, 0.3]
  interval: "hour"
mqtt:
  broker: "tcp://localhost:1883"
  topic: "home/battery/plan"
metrics:
  prometheus_enabled: true
logging:
  level: "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"capacity_kwh", cfg.Battery.CapacityKWh, 5.0},
		{"efficiency", cfg.Battery.Efficiency, 0.9},
		{"tax_rate", cfg.Tariff.TaxRate, 0.21},
		{"cutoff", cfg.Tariff.Cutoff, 0.2},
		{"netmetering.days", cfg.NetMetering.Days, 3},
		{"horizon.interval", cfg.Horizon.Interval, "hour"},
		{"horizon.prices", len(cfg.Horizon.Prices), 3},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "wattflex"},
		{"metrics.prom", cfg.Metrics.PrometheusEnabled, true},
		{"metrics.addr", cfg.Metrics.PrometheusAddr, ":9090"},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `battery:
  capacity_kwh: 5.0
  min_soc: 0.15
  max_soc: 0.9
  max_discharge_kw: 3.68
  max_charge_kw: 2.5
  efficiency: 0.9
horizon:
  prices: [0.1]
logging:
  level: "info"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WF_LOGGING__LEVEL", "warn")
	t.Setenv("WF_MQTT__BROKER", "tcp://broker:1883")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env override not applied: %s", cfg.Logging.Level)
	}
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("env override not applied: %s", cfg.MQTT.Broker)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		data string
	}{
		{"bad battery", "battery:\n  capacity_kwh: -1\nhorizon:\n  prices: [0.1]\n"},
		{"no prices", "battery:\n  capacity_kwh: 5\n  min_soc: 0.1\n  max_soc: 0.9\n  max_discharge_kw: 1\n  max_charge_kw: 1\n  efficiency: 0.9\n"},
		{"bad level", "battery:\n  capacity_kwh: 5\n  min_soc: 0.1\n  max_soc: 0.9\n  max_discharge_kw: 1\n  max_charge_kw: 1\n  efficiency: 0.9\nhorizon:\n  prices: [0.1]\nlogging:\n  level: \"loud\"\n"},
	}
	for _, c := range cases {
		path := filepath.Join(dir, c.name+".yaml")
		if err := os.WriteFile(path, []byte(c.data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}
