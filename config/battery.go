package config

import (
	"github.com/mariondam/Wattflex/core/battery"
)

// BatteryConfig describes the physical battery under control.
type BatteryConfig struct {
	CapacityKWh    float64 `json:"capacity_kwh"`
	MinSoC         float64 `json:"min_soc"`
	MaxSoC         float64 `json:"max_soc"`
	MaxDischargeKW float64 `json:"max_discharge_kw"`
	MaxChargeKW    float64 `json:"max_charge_kw"`
	Efficiency     float64 `json:"efficiency"`
}

// Spec builds the validated battery spec from the raw config values.
func (c BatteryConfig) Spec() (battery.Spec, error) {
	return battery.New(c.CapacityKWh, c.MinSoC, c.MaxSoC, c.MaxDischargeKW, c.MaxChargeKW, c.Efficiency)
}

// Validate checks the values by attempting to build the spec.
func (c BatteryConfig) Validate() error {
	_, err := c.Spec()
	return err
}
