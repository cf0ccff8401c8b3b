package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mariondam/Wattflex/core/battery"
)

// Dutch EPEX day-ahead prices on 8 Nov 2022, in euro per kWh, with simulated
// household consumption and solar surplus for the same day.
var (
	epexPrices = []float64{
		0.04264, 0.02996, 0.0277, 0.02621, 0.03096, 0.03425,
		0.068, 0.12827, 0.13552, 0.1001, 0.0814, 0.07927,
		0.07535, 0.09123, 0.09346, 0.12103, 0.12067, 0.13951,
		0.15773, 0.126, 0.118, 0.1217, 0.112, 0.098,
	}
	exampleUsage = []float64{
		0.15, 0.12, 0.12, 0.15, 0.12, 0.14,
		0.13, 0.12, 0.16, 0.15, 0.1, 0.45,
		0.18, 0.01, 0.01, 0.06, 0.2, 0.71,
		0.19, 0.29, 0.26, 0.25, 0.27, 0.21,
	}
	exampleFeedIn = []float64{
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
		0.31, 0.49, 0.20, 0.01, 0, 0,
		0, 0, 0, 0, 0, 0,
	}
)

func exampleBattery(t *testing.T) battery.Spec {
	t.Helper()
	spec, err := battery.New(5, 0.15, 0.9, 3.68, 2.5, 0.9)
	require.NoError(t, err)
	return spec
}

func exampleSeries() Series {
	return Series{Prices: epexPrices, Usage: exampleUsage, FeedIn: exampleFeedIn}
}
