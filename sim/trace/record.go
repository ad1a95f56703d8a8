// Package trace records per-customer outcomes for offline analysis.
// It stores plain data and does not depend on sim/.
package trace

// Outcome names written into CustomerRecord.Outcome.
const (
	OutcomeServed  = "served"
	OutcomeBalked  = "balked"
	OutcomeReneged = "reneged"
)

// CustomerRecord captures one customer that reached a terminal outcome.
type CustomerRecord struct {
	Run              int     `yaml:"run"` // 1-based run index within the aggregation
	CustomerID       uint64  `yaml:"customer_id"`
	Outcome          string  `yaml:"outcome"`
	ArrivalTime      float64 `yaml:"arrival_time"`
	PatienceDeadline float64 `yaml:"patience_deadline"`
	WaitTime         float64 `yaml:"wait_time"`
	ServiceTime      float64 `yaml:"service_time"`
}
