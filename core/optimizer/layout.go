package optimizer

// layout maps (block, period) pairs onto a flat decision vector made of
// contiguous length-T blocks, one block per decision-variable group. All
// index arithmetic into solver vectors goes through it.
type layout struct {
	periods int
	blocks  int
}

func (l layout) index(block, t int) int { return block*l.periods + t }

func (l layout) vars() int { return l.blocks * l.periods }

// block returns the slice of x holding the given decision-variable group.
func (l layout) block(x []float64, block int) []float64 {
	return x[block*l.periods : (block+1)*l.periods]
}

// Decision-variable blocks of the tariff model, in vector order.
const (
	tarGridDischarge    = iota // kWh discharged to the grid
	tarSelfUseDischarge        // kWh discharged to offset on-site usage
	tarGridCharge              // kWh charged from the grid
	tarSolarCharge             // kWh charged from on-site surplus
	tarTotalDischarge          // kWh discharged in total
	tarTotalCharge             // kWh charged in total
	tarSoC                     // state of charge at the start of the period
	tarFlag                    // 1 when charging is permitted in the period
	tarBlocks
)

// Decision-variable blocks of the net-metering model, in vector order.
const (
	nmDischarge = iota
	nmCharge
	nmSoC
	nmFlag
	nmBlocks
)
