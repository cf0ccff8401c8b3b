package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariondam/Wattflex/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		Battery: config.BatteryConfig{
			CapacityKWh:    5,
			MinSoC:         0.15,
			MaxSoC:         0.9,
			MaxDischargeKW: 3.68,
			MaxChargeKW:    2.5,
			Efficiency:     0.9,
		},
		Tariff: config.TariffConfig{
			StartSoC:       0.15,
			EndSoC:         0.15,
			TaxRate:        0.21,
			FixedTaxPerKWh: 0.15,
			Cutoff:         0.2,
		},
		NetMetering: config.NetMeteringConfig{
			StartSoC: 0.15,
			EndSoC:   0.15,
			Days:     2,
		},
		Horizon: config.HorizonConfig{
			Prices: []float64{0.05, 0.25, 0.1, 0.3},
		},
	}
	cfg.Horizon.SetDefaults()
	cfg.Logging.SetDefaults()
	return cfg
}

func TestServiceRunTariff(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.Run(context.Background(), "tariff"))
}

func TestServiceRunNetMetering(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.Run(context.Background(), "netmetering"))
}

func TestServiceRejectsUnknownMode(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()

	err = svc.Run(context.Background(), "blockchain")
	assert.ErrorContains(t, err, "unknown mode")
}

func TestServiceRejectsBadBattery(t *testing.T) {
	cfg := testConfig()
	cfg.Battery.CapacityKWh = -1
	_, err := New(cfg)
	assert.Error(t, err)
}
