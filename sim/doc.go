// Package sim provides the discrete-event simulation engine for the bank
// teller model: customers arrive at random, balk when the line is too long,
// renege when their patience runs out, and are otherwise served FIFO by a
// fixed number of tellers.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go, simulator.go: the timeline and the single-threaded event loop
//   - process.go: continuation-passing processes with Wait and Race
//   - resource.go: the teller pool and its FIFO wait list
//   - customer.go: the customer lifecycle (balk, renege, serve)
//   - run.go, stats.go: one run, and the aggregation over many runs
//
// # Architecture
//
// Everything inside one run happens on one goroutine. A process suspends by
// handing the simulator a continuation; the event loop resumes it at the due
// time. Race waits for a teller and a patience timeout at once, and exactly
// one of the two resumes the process: a grant cancels the timeout event, an
// expiry withdraws the request from the wait list.
//
// Randomness comes from a PartitionedRNG with separate arrival and service
// streams. Duration samplers live in sim/workload/.
package sim
