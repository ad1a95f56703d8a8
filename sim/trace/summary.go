package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalCustomers int
	ServedCount    int
	BalkedCount    int
	RenegedCount   int
	MeanServedWait float64 // over served customers
	MaxServedWait  float64
	MeanRenegeWait float64 // time reneging customers spent in line
	RunCount       int
	PerRun         map[int]int // run index → customers recorded
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PerRun: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalCustomers = len(st.Customers)
	servedWait, renegeWait := 0.0, 0.0
	for _, c := range st.Customers {
		summary.PerRun[c.Run]++
		switch c.Outcome {
		case OutcomeServed:
			summary.ServedCount++
			servedWait += c.WaitTime
			if c.WaitTime > summary.MaxServedWait {
				summary.MaxServedWait = c.WaitTime
			}
		case OutcomeBalked:
			summary.BalkedCount++
		case OutcomeReneged:
			summary.RenegedCount++
			renegeWait += c.WaitTime
		}
	}
	if summary.ServedCount > 0 {
		summary.MeanServedWait = servedWait / float64(summary.ServedCount)
	}
	if summary.RenegedCount > 0 {
		summary.MeanRenegeWait = renegeWait / float64(summary.RenegedCount)
	}

	summary.RunCount = len(summary.PerRun)

	return summary
}
