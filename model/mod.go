package model

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// Action names an intended choice. The realized transition slot is drawn from
// the action's outcome distribution.
type Action string

// Reward maps a state to its immediate reward. It must be pure and total over
// the state space, terminal states included.
type Reward[S comparable] func(S) float64

// Utility maps every state to its estimated utility.
type Utility[S comparable] map[S]float64

// Policy maps non-terminal states to the action chosen there. Entries for
// terminal states are tolerated and ignored.
type Policy[S comparable] map[S]Action

func (p Policy[S]) Clone() Policy[S] {
	return maps.Clone(p)
}

// RewardTable returns a reward function backed by a lookup table, falling
// back to fallback for states without an entry.
func RewardTable[S comparable](table map[S]float64, fallback float64) Reward[S] {
	table = maps.Clone(table)
	return func(s S) float64 {
		if r, ok := table[s]; ok {
			return r
		}
		return fallback
	}
}

// Cell is a grid coordinate, column first.
type Cell struct {
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
