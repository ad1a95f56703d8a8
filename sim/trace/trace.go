package trace

// TraceLevel controls the verbosity of customer tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelCustomers captures the terminal outcome of every customer.
	TraceLevelCustomers TraceLevel = "customers"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelCustomers: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects customer records across the runs of one aggregation.
type SimulationTrace struct {
	Level     TraceLevel       `yaml:"level"`
	Customers []CustomerRecord `yaml:"customers"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	return &SimulationTrace{
		Level:     level,
		Customers: make([]CustomerRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level == TraceLevelCustomers
}

// RecordCustomer appends a customer record.
func (st *SimulationTrace) RecordCustomer(record CustomerRecord) {
	st.Customers = append(st.Customers, record)
}
