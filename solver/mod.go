package solver

import (
	"errors"
	"fmt"
	"math"

	"mdp/metrics"
	"mdp/model"
)

// Defaults for the solvers

const DefaultDelta = 1e-4 // Stop Value Iteration once no utility moves by more than this

const NoLimit = -1 // Disables a count-based stopping rule

const DefaultVIterations = 20 // Evaluation sweeps per round, and round cap, of Policy Iteration

const (
	ValueMethod  = "value_iteration"
	PolicyMethod = "policy_iteration"
)

// ErrInvalidParameter is returned when a solver parameter cannot lead to a
// meaningful run.
var ErrInvalidParameter = errors.New("invalid parameter")

type Option func(o *options)

type options struct {
	delta         float64
	maxIterations int
	goroutines    int
	sweeps        int
	maxRounds     int
	metrics       metrics.Collector
}

func defaultOptions() options {
	return options{
		delta:         DefaultDelta,
		maxIterations: NoLimit,
		goroutines:    1,
		sweeps:        DefaultVIterations,
		maxRounds:     DefaultVIterations,
		metrics:       metrics.NewDummyCollector(),
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, option := range opts {
		option(&o)
	}
	return o
}

// WithDelta sets the Value Iteration convergence threshold.
func WithDelta(delta float64) Option {
	return func(o *options) {
		o.delta = delta
	}
}

// WithMaxIterations caps the number of Value Iteration sweeps. Negative
// values disable the cap.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithGoroutines spreads each Value Iteration sweep over n goroutines.
func WithGoroutines(n int) Option {
	return func(o *options) {
		o.goroutines = n
	}
}

// WithEvaluationSweeps sets the number of Policy Evaluation sweeps per
// Policy Iteration round.
func WithEvaluationSweeps(n int) Option {
	return func(o *options) {
		o.sweeps = n
	}
}

// WithMaxRounds caps the number of Policy Iteration rounds. Negative values
// disable the cap.
func WithMaxRounds(n int) Option {
	return func(o *options) {
		o.maxRounds = n
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(o *options) {
		if collector != nil {
			o.metrics = collector
		}
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

func checkDiscount(gamma float64) error {
	if math.IsNaN(gamma) || gamma < 0 || gamma > 1 {
		return invalid("discount %v outside [0, 1]", gamma)
	}
	return nil
}

// rewards evaluates reward once per state, in canonical order.
func rewards[S comparable](m *model.MDP[S], reward model.Reward[S]) ([]float64, error) {
	if m == nil {
		return nil, invalid("nil MDP")
	}
	if reward == nil {
		return nil, invalid("nil reward function")
	}
	r := make([]float64, m.Len())
	for i := range r {
		r[i] = reward(m.State(i))
		if math.IsNaN(r[i]) || math.IsInf(r[i], 0) {
			return nil, invalid("reward %v for state %v", r[i], m.State(i))
		}
	}
	return r, nil
}
