package solver

import (
	"github.com/rs/zerolog/log"

	"mdp/metrics"
	"mdp/model"
)

// PolicyIterator runs Policy Iteration: rounds of Policy Evaluation followed
// by greedy improvement, until no state changes its action.
type PolicyIterator[S comparable] struct {
	options
}

func NewPolicyIterator[S comparable](opts ...Option) *PolicyIterator[S] {
	return &PolicyIterator[S]{options: newOptions(opts)}
}

// PolicyIteration improves policy in place and returns it. viterations is
// both the number of evaluation sweeps per round and the round cap.
func PolicyIteration[S comparable](m *model.MDP[S], gamma float64, reward model.Reward[S], policy model.Policy[S], viterations int) (model.Policy[S], error) {
	p, _, err := NewPolicyIterator[S](WithEvaluationSweeps(viterations), WithMaxRounds(viterations)).Solve(m, gamma, reward, policy)
	return p, err
}

func (p *PolicyIterator[S]) validate(gamma float64) error {
	if err := checkDiscount(gamma); err != nil {
		return err
	}
	if p.sweeps <= 0 {
		return invalid("evaluation sweeps must be positive, got %d", p.sweeps)
	}
	if p.maxRounds == 0 {
		return invalid("round cap of 0 never improves; use a positive cap or %d", NoLimit)
	}
	return nil
}

// Solve improves policy in place. A state's action only changes when another
// action is strictly better; the first action in canonical order with the
// highest value is then chosen. policy is left untouched on error.
func (p *PolicyIterator[S]) Solve(m *model.MDP[S], gamma float64, reward model.Reward[S], policy model.Policy[S]) (model.Policy[S], metrics.SolveMetric, error) {
	if err := p.validate(gamma); err != nil {
		return nil, metrics.SolveMetric{}, err
	}
	r, err := rewards(m, reward)
	if err != nil {
		return nil, metrics.SolveMetric{}, err
	}
	choices, err := m.Choices(policy)
	if err != nil {
		return nil, metrics.SolveMetric{}, err
	}

	w := newWorkspace(m)
	u := make([]float64, len(r))
	copy(u, r)

	p.metrics.Start(PolicyMethod, 1)
	converged := false
	rounds := 1
	for {
		for i := 0; i < p.sweeps; i++ {
			p.metrics.AddSweep(evaluationSweep(w, m, choices, gamma, r, u))
		}

		changed := p.improve(w, m, choices, u)
		p.metrics.AddRound(changed)
		log.Debug().Int("round", rounds).Int("changed", changed).Msg("policy iteration round")

		if changed == 0 {
			converged = true
			break
		}
		if p.maxRounds > 0 && rounds == p.maxRounds {
			break
		}
		rounds++
	}
	metric := p.metrics.Complete(converged)

	actions := m.Actions()
	for i, a := range choices {
		if a >= 0 {
			policy[m.State(i)] = actions[a]
		}
	}

	log.Info().Msgf("policy iteration finished after %d rounds (converged=%t)", rounds, converged)
	return policy, metric, nil
}

// improve switches every non-terminal state to its greedy action when that
// action is strictly better than the current one, and returns how many
// states switched.
func (p *PolicyIterator[S]) improve(w *workspace, m *model.MDP[S], choices []int, u []float64) int {
	changed := 0
	for i, current := range choices {
		if current < 0 {
			continue
		}
		best, action := backup(w, m, m.Transitions(i), u)
		if best > w.q[current] {
			choices[i] = action
			changed++
		}
	}
	return changed
}
