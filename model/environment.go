package model

// Environment bundles an MDP with the reward function, starting policy and
// start state it is usually solved with.
type Environment[S comparable] struct {
	Name   string
	MDP    *MDP[S]
	Reward Reward[S]
	Policy Policy[S]
	Start  S
}

// Compass actions. Transition slots of the built-in environments follow the
// same L, R, U, D order.
const (
	Left  Action = "L"
	Right Action = "R"
	Up    Action = "U"
	Down  Action = "D"
)

// StepReward is the reward of every non-terminal state in the built-in environments.
const StepReward = -0.04

// addNoisyCompass declares the four compass actions: the intended direction
// is realized with probability 0.8, each perpendicular one with 0.1.
func addNoisyCompass[S comparable](b *Builder[S]) *Builder[S] {
	return b.
		SetOutcomes(Left, .8, 0, .1, .1).
		SetOutcomes(Right, 0, .8, .1, .1).
		SetOutcomes(Up, .1, .1, .8, 0).
		SetOutcomes(Down, .1, .1, 0, .8)
}

// TwoByTwo returns the 2x2 world: states 1 and 2 on the bottom row and top
// left, 3 (+1) and 4 (-1) terminal.
func TwoByTwo() Environment[int] {
	b := NewBuilder[int](Left, Right, Up, Down)
	addNoisyCompass(b).
		AddState(1, 1, 4, 2, 1).
		AddState(2, 2, 3, 2, 1).
		AddTerminal(3).
		AddTerminal(4)

	// Indexed by state
	rewards := []float64{0, StepReward, StepReward, 1, -1}

	return Environment[int]{
		Name:   "2x2",
		MDP:    b.MustBuild(),
		Reward: func(s int) float64 { return rewards[s] },
		Policy: Policy[int]{1: Right, 2: Down},
		Start:  1,
	}
}

// FourByThree returns the classic 4x3 grid world. (4,3) pays +1 and (4,2)
// pays -1; the wall at (2,2) is kept as an unreachable terminal cell.
func FourByThree() Environment[Cell] {
	b := NewBuilder[Cell](Left, Right, Up, Down)
	addNoisyCompass(b).
		AddState(Cell{1, 1}, Cell{1, 1}, Cell{2, 1}, Cell{1, 2}, Cell{1, 1}).
		AddState(Cell{1, 2}, Cell{1, 2}, Cell{1, 2}, Cell{1, 3}, Cell{1, 1}).
		AddState(Cell{1, 3}, Cell{1, 3}, Cell{2, 3}, Cell{1, 3}, Cell{1, 2}).
		AddState(Cell{2, 1}, Cell{1, 1}, Cell{3, 1}, Cell{2, 1}, Cell{2, 1}).
		AddTerminal(Cell{2, 2}).
		AddState(Cell{2, 3}, Cell{1, 3}, Cell{3, 3}, Cell{2, 3}, Cell{2, 3}).
		AddState(Cell{3, 1}, Cell{2, 1}, Cell{4, 1}, Cell{3, 2}, Cell{3, 1}).
		AddState(Cell{3, 2}, Cell{3, 2}, Cell{4, 2}, Cell{3, 3}, Cell{3, 1}).
		AddState(Cell{3, 3}, Cell{2, 3}, Cell{4, 3}, Cell{3, 3}, Cell{3, 2}).
		AddState(Cell{4, 1}, Cell{3, 1}, Cell{4, 1}, Cell{4, 2}, Cell{4, 1}).
		AddTerminal(Cell{4, 2}).
		AddTerminal(Cell{4, 3})
	m := b.MustBuild()

	policy := make(Policy[Cell], m.Len())
	for _, s := range m.States() {
		policy[s] = Left
	}

	return Environment[Cell]{
		Name:   "4x3",
		MDP:    m,
		Reward: RewardTable(map[Cell]float64{{4, 2}: -1, {4, 3}: 1}, StepReward),
		Policy: policy,
		Start:  Cell{1, 1},
	}
}
