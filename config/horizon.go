package config

import (
	"fmt"

	"github.com/mariondam/Wattflex/core/optimizer"
)

// HorizonConfig carries the per-period inputs for one optimization horizon.
// Usage and FeedIn may be left empty; they default to zero for every period.
type HorizonConfig struct {
	Prices   []float64 `json:"prices"`
	Usage    []float64 `json:"usage"`
	FeedIn   []float64 `json:"feedin"`
	Interval string    `json:"interval"`
}

// SetDefaults applies sane defaults.
func (c *HorizonConfig) SetDefaults() {
	if c.Interval == "" {
		c.Interval = string(optimizer.IntervalHour)
	}
}

// Validate checks mandatory fields.
func (c HorizonConfig) Validate() error {
	if len(c.Prices) == 0 {
		return fmt.Errorf("horizon needs at least one price")
	}
	if len(c.Usage) != 0 && len(c.Usage) != len(c.Prices) {
		return fmt.Errorf("usage has %d entries, want %d", len(c.Usage), len(c.Prices))
	}
	if len(c.FeedIn) != 0 && len(c.FeedIn) != len(c.Prices) {
		return fmt.Errorf("feedin has %d entries, want %d", len(c.FeedIn), len(c.Prices))
	}
	return nil
}

// Series assembles the optimizer input, padding absent usage and feed-in
// series with zeros.
func (c HorizonConfig) Series() optimizer.Series {
	usage := c.Usage
	if len(usage) == 0 {
		usage = make([]float64, len(c.Prices))
	}
	feedIn := c.FeedIn
	if len(feedIn) == 0 {
		feedIn = make([]float64, len(c.Prices))
	}
	return optimizer.Series{Prices: c.Prices, Usage: usage, FeedIn: feedIn}
}
