package metrics

import (
	"sync"
	"time"
)

type SolveMetric struct {
	Method        string
	Goroutines    int
	StartTime     time.Time
	Duration      time.Duration
	Sweeps        int
	Rounds        int       // Policy Iteration only
	Changes       []float64 // Largest utility change of each sweep
	PolicyChanges []int     // States that switched action in each round
	Converged     bool
}

// FinalChange returns the utility change of the last sweep, or 0 before any sweep.
func (m SolveMetric) FinalChange() float64 {
	if len(m.Changes) == 0 {
		return 0
	}
	return m.Changes[len(m.Changes)-1]
}

// Collector records the progress of one solver run at a time.
type Collector interface {
	Start(method string, goroutines int)
	AddSweep(change float64)
	AddRound(changes int)
	Complete(converged bool) SolveMetric
}

type collector struct {
	sync.Mutex
	method        string
	goroutines    int
	startTime     time.Time
	changes       []float64
	policyChanges []int
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(method string, goroutines int) {
	c.Lock()
	defer c.Unlock()

	c.method = method
	c.goroutines = goroutines
	c.startTime = time.Now()
	c.changes = nil
	c.policyChanges = nil
}

func (c *collector) AddSweep(change float64) {
	c.Lock()
	defer c.Unlock()

	c.changes = append(c.changes, change)
}

func (c *collector) AddRound(changes int) {
	c.Lock()
	defer c.Unlock()

	c.policyChanges = append(c.policyChanges, changes)
}

func (c *collector) Complete(converged bool) SolveMetric {
	c.Lock()
	defer c.Unlock()

	return SolveMetric{
		Method:        c.method,
		Goroutines:    c.goroutines,
		StartTime:     c.startTime,
		Duration:      time.Since(c.startTime),
		Sweeps:        len(c.changes),
		Rounds:        len(c.policyChanges),
		Changes:       append([]float64(nil), c.changes...),
		PolicyChanges: append([]int(nil), c.policyChanges...),
		Converged:     converged,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) Start(method string, goroutines int) {}
func (c *dummyCollector) AddSweep(change float64)             {}
func (c *dummyCollector) AddRound(changes int)                {}
func (c *dummyCollector) Complete(converged bool) SolveMetric { return SolveMetric{} }
