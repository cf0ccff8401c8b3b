package config

import (
	"fmt"

	"github.com/mariondam/Wattflex/core/optimizer"
)

// TariffConfig parameterizes the four-flow tariff model. Grid flows are
// allowed unless explicitly disabled.
type TariffConfig struct {
	StartSoC             float64 `json:"start_soc"`
	EndSoC               float64 `json:"end_soc"`
	TaxRate              float64 `json:"tax_rate"`
	FixedTaxPerKWh       float64 `json:"fixed_tax_per_kwh"`
	DisableGridDischarge bool    `json:"disable_grid_discharge"`
	DisableGridCharge    bool    `json:"disable_grid_charge"`
	Cutoff               float64 `json:"cutoff"`
}

// Params converts the config into optimizer parameters for the given
// interval selector.
func (c TariffConfig) Params(interval optimizer.Interval) optimizer.TariffParams {
	p := optimizer.DefaultTariffParams()
	p.StartSoC = c.StartSoC
	p.EndSoC = c.EndSoC
	p.TaxRate = c.TaxRate
	p.FixedTaxPerKWh = c.FixedTaxPerKWh
	p.AllowGridDischarge = !c.DisableGridDischarge
	p.AllowGridCharge = !c.DisableGridCharge
	p.Cutoff = c.Cutoff
	p.Interval = interval
	return p
}

// Validate checks value ranges.
func (c TariffConfig) Validate() error {
	if c.StartSoC < 0 || c.StartSoC > 1 {
		return fmt.Errorf("start_soc %v outside [0, 1]", c.StartSoC)
	}
	if c.EndSoC < 0 || c.EndSoC > 1 {
		return fmt.Errorf("end_soc %v outside [0, 1]", c.EndSoC)
	}
	if c.TaxRate < 0 {
		return fmt.Errorf("tax_rate must not be negative")
	}
	if c.FixedTaxPerKWh < 0 {
		return fmt.Errorf("fixed_tax_per_kwh must not be negative")
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("cutoff must not be negative")
	}
	return nil
}

// NetMeteringConfig parameterizes the two-flow net-metering model. Days
// selects how many consecutive horizons the runner chains together.
type NetMeteringConfig struct {
	StartSoC float64 `json:"start_soc"`
	EndSoC   float64 `json:"end_soc"`
	Cutoff   float64 `json:"cutoff"`
	Days     int     `json:"days"`
}

// SetDefaults applies sane defaults.
func (c *NetMeteringConfig) SetDefaults() {
	if c.Days == 0 {
		c.Days = 1
	}
}

// Validate checks value ranges.
func (c NetMeteringConfig) Validate() error {
	if c.StartSoC < 0 || c.StartSoC > 1 {
		return fmt.Errorf("start_soc %v outside [0, 1]", c.StartSoC)
	}
	if c.EndSoC < 0 || c.EndSoC > 1 {
		return fmt.Errorf("end_soc %v outside [0, 1]", c.EndSoC)
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("cutoff must not be negative")
	}
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1")
	}
	return nil
}
