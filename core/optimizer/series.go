package optimizer

import (
	"fmt"
	"math"
)

// Series holds one horizon of per-period inputs for the tariff model. All
// slices must have the same length T, one entry per period.
type Series struct {
	Prices []float64 // day-ahead price in currency per kWh, pre-tax
	Usage  []float64 // on-site consumption in kWh
	FeedIn []float64 // producible surplus in kWh
}

// Periods returns the horizon length T.
func (s Series) Periods() int { return len(s.Prices) }

func (s Series) validate() error {
	if len(s.Prices) == 0 {
		return fmt.Errorf("series has no periods")
	}
	if len(s.Usage) != len(s.Prices) || len(s.FeedIn) != len(s.Prices) {
		return fmt.Errorf("series length mismatch: %d prices, %d usage, %d feed-in",
			len(s.Prices), len(s.Usage), len(s.FeedIn))
	}
	return nil
}

// sanitized returns a copy of the series with NaN usage and feed-in entries
// replaced by zero. Missing meter readings must not poison the model.
func (s Series) sanitized() Series {
	out := Series{
		Prices: append([]float64(nil), s.Prices...),
		Usage:  zeroNaN(s.Usage),
		FeedIn: zeroNaN(s.FeedIn),
	}
	return out
}

func zeroNaN(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		if !math.IsNaN(v) {
			out[i] = v
		}
	}
	return out
}

// Interval selects the period duration of the optimization horizon.
type Interval string

const (
	IntervalHour    Interval = "hour"
	IntervalQuarter Interval = "quarter"
)

// fraction returns the period duration in hours and whether the selector was
// recognized. The empty selector counts as hour.
func (iv Interval) fraction() (float64, bool) {
	switch iv {
	case IntervalHour, "":
		return 1, true
	case IntervalQuarter:
		return 0.25, true
	}
	return 1, false
}
