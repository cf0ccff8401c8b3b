// Package battery describes the static physical properties of a stationary
// home battery used by the schedule optimizers.
package battery

import (
	"fmt"
	"math"
)

// Spec holds the physical limits of one battery. A Spec is immutable after
// construction and may be shared between optimizer instances.
type Spec struct {
	CapacityKWh    float64 // total storage capacity in kWh
	MinSoC         float64 // lowest allowed state of charge, fraction of capacity
	MaxSoC         float64 // highest allowed state of charge, fraction of capacity
	MaxDischargeKW float64 // maximum discharge power in kW
	MaxChargeKW    float64 // maximum charge power in kW
	// Efficiency is the fraction of stored energy recoverable on discharge.
	// 0.9 means every stored kWh yields 0.9 kWh when discharged.
	Efficiency float64

	// DischargeRatio and ChargeRatio relate power limits to capacity. They
	// are informational and not used when building constraints.
	DischargeRatio float64
	ChargeRatio    float64
}

// New validates the given limits and returns a Spec. MinSoC outside [0,1)
// falls back to 0 and MaxSoC outside (0,1] falls back to 1 before
// validation. Capacity and efficiency must be positive, power limits
// non-negative and the SoC band non-empty.
func New(capacityKWh, minSoC, maxSoC, maxDischargeKW, maxChargeKW, efficiency float64) (Spec, error) {
	if minSoC < 0 || minSoC >= 1 {
		minSoC = 0
	}
	if maxSoC <= 0 || maxSoC > 1 {
		maxSoC = 1
	}
	if capacityKWh <= 0 {
		return Spec{}, fmt.Errorf("battery capacity must be positive, got %v", capacityKWh)
	}
	if maxDischargeKW < 0 || maxChargeKW < 0 {
		return Spec{}, fmt.Errorf("power limits must be non-negative, got discharge %v charge %v", maxDischargeKW, maxChargeKW)
	}
	if efficiency <= 0 || efficiency > 1 {
		return Spec{}, fmt.Errorf("efficiency must be in (0,1], got %v", efficiency)
	}
	if minSoC >= maxSoC {
		return Spec{}, fmt.Errorf("min SoC %v must be below max SoC %v", minSoC, maxSoC)
	}
	return Spec{
		CapacityKWh:    capacityKWh,
		MinSoC:         minSoC,
		MaxSoC:         maxSoC,
		MaxDischargeKW: maxDischargeKW,
		MaxChargeKW:    maxChargeKW,
		Efficiency:     efficiency,
		DischargeRatio: round3(maxDischargeKW / capacityKWh),
		ChargeRatio:    round3(maxChargeKW / capacityKWh),
	}, nil
}

// EffectiveCapacityKWh returns the usable energy band between MinSoC and
// MaxSoC in kWh.
func (s Spec) EffectiveCapacityKWh() float64 {
	return (s.MaxSoC - s.MinSoC) * s.CapacityKWh
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
