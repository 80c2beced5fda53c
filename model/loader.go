package model

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

type environmentFile struct {
	Name          string               `yaml:"name"`
	Actions       []Action             `yaml:"actions"`
	Outcomes      map[Action][]float64 `yaml:"outcomes"`
	States        []stateFile          `yaml:"states"`
	DefaultReward float64              `yaml:"default_reward"`
	Start         string               `yaml:"start"`
	Policy        map[string]Action    `yaml:"policy"`
}

type stateFile struct {
	ID       string   `yaml:"id"`
	Next     []string `yaml:"next"`
	Terminal bool     `yaml:"terminal"`
	Reward   *float64 `yaml:"reward"`
}

// LoadEnvironment reads an environment description from a YAML file.
func LoadEnvironment(path string) (Environment[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return Environment[string]{}, fmt.Errorf("failed to open environment file: %w", err)
	}
	defer f.Close()

	env, err := DecodeEnvironment(f)
	if err != nil {
		return Environment[string]{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return env, nil
}

// DecodeEnvironment decodes a YAML environment description. States are
// identified by their string ids. Non-terminal states without a reward get
// default_reward, terminal states default to 0. Without a policy section the
// first action is chosen everywhere; without a start the first state is used.
func DecodeEnvironment(reader io.Reader) (Environment[string], error) {
	var file environmentFile
	dec := yaml.NewDecoder(reader)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Environment[string]{}, fmt.Errorf("failed to decode environment: %w", err)
	}

	b := NewBuilder[string](file.Actions...)
	for _, a := range file.Actions {
		if probs, ok := file.Outcomes[a]; ok {
			b.SetOutcomes(a, probs...)
		}
	}
	// Let the builder report outcomes for undeclared actions, in a stable order
	var extra []Action
	for a := range file.Outcomes {
		if !slices.Contains(file.Actions, a) {
			extra = append(extra, a)
		}
	}
	slices.Sort(extra)
	for _, a := range extra {
		b.SetOutcomes(a, file.Outcomes[a]...)
	}

	rewards := make(map[string]float64, len(file.States))
	for _, s := range file.States {
		if s.Terminal {
			b.AddTerminal(s.ID)
		} else {
			b.AddState(s.ID, s.Next...)
		}
		switch {
		case s.Reward != nil:
			rewards[s.ID] = *s.Reward
		case s.Terminal:
			rewards[s.ID] = 0
		}
	}

	m, err := b.Build()
	if err != nil {
		return Environment[string]{}, err
	}

	policy := make(Policy[string], m.Len())
	if len(file.Policy) > 0 {
		maps.Copy(policy, file.Policy)
		if _, err := m.Choices(policy); err != nil {
			return Environment[string]{}, fmt.Errorf("invalid initial policy: %w", err)
		}
	} else {
		for _, s := range m.States() {
			if !m.IsTerminal(s) {
				policy[s] = m.actions[0]
			}
		}
	}

	start := file.Start
	if start == "" {
		start = m.State(0)
	} else if !m.Has(start) {
		return Environment[string]{}, stateError(start, ErrUnknownState, "start state is not in the graph")
	}

	name := file.Name
	if name == "" {
		name = "custom"
	}

	return Environment[string]{
		Name:   name,
		MDP:    m,
		Reward: RewardTable(rewards, file.DefaultReward),
		Policy: policy,
		Start:  start,
	}, nil
}
