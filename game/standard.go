package game

import (
	"fmt"

	"stackrankdice/dice"
	"stackrankdice/meta"
)

// SpoilsRule decides how a winning attacker's dice are split.
type SpoilsRule string

const (
	// SpoilsMoveAllButOne moves every die but one into the conquered region.
	SpoilsMoveAllButOne SpoilsRule = "move_all_but_one"
	// SpoilsRandomSplit moves a uniform 1..n-1 dice, the rest stay behind.
	SpoilsRandomSplit SpoilsRule = "random_split"
)

// DefeatRule decides what a failed attack costs.
type DefeatRule string

const (
	// DefeatKeepOne leaves the attacking region with a single die.
	DefeatKeepOne DefeatRule = "keep_one"
	// DefeatCounterCapture lets a defender with two or more dice take the attacking
	// region, splitting its dice like spoils.
	DefeatCounterCapture DefeatRule = "counter_capture"
)

type StandardRules struct {
	MaxDiceCount        int        `yaml:"max_dice" env:"MAX_DICE"`
	LargestClusterBonus bool       `yaml:"largest_cluster_bonus" env:"LARGEST_CLUSTER_BONUS"`
	SingleAttack        bool       `yaml:"single_attack_per_region" env:"SINGLE_ATTACK_PER_REGION"`
	Spoils              SpoilsRule `yaml:"spoils" env:"SPOILS"`
	Defeat              DefeatRule `yaml:"defeat" env:"DEFEAT"`
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		MaxDiceCount: meta.MAX_DICE,
		Spoils:       SpoilsMoveAllButOne,
		Defeat:       DefeatKeepOne,
	}
}

func (sr *StandardRules) Validate() error {
	if sr.MaxDiceCount < 2 {
		return fmt.Errorf("max dice must be at least 2, got %d", sr.MaxDiceCount)
	}
	switch sr.Spoils {
	case SpoilsMoveAllButOne, SpoilsRandomSplit:
	default:
		return fmt.Errorf("unknown spoils rule %q", sr.Spoils)
	}
	switch sr.Defeat {
	case DefeatKeepOne, DefeatCounterCapture:
	default:
		return fmt.Errorf("unknown defeat rule %q", sr.Defeat)
	}
	return nil
}

func (sr *StandardRules) MaxDice() int {
	return sr.MaxDiceCount
}

// ReinforcementPool grants one die per contiguous cluster, plus the size of the largest
// cluster when the bonus rule is on.
func (sr *StandardRules) ReinforcementPool(clusters [][]int) int {
	pool := len(clusters)
	if sr.LargestClusterBonus && len(clusters) > 0 {
		largest := 0
		for _, c := range clusters {
			largest = max(largest, len(c))
		}
		pool += largest
	}
	return pool
}

func (sr *StandardRules) SingleAttackPerRegion() bool {
	return sr.SingleAttack
}

func (sr *StandardRules) DetermineSpoils(attackerDice int, src dice.Source) (conquered, left int) {
	if sr.Spoils == SpoilsRandomSplit {
		conquered = dice.Between(src, 1, attackerDice-1)
		return conquered, attackerDice - conquered
	}
	return attackerDice - 1, 1
}

func (sr *StandardRules) DetermineDefeat(attackerDice, defenderDice int, src dice.Source) (attackerLeft int, captured bool, defenderLeft int) {
	if sr.Defeat == DefeatCounterCapture && defenderDice >= 2 {
		moved, stayed := sr.DetermineSpoils(defenderDice, src)
		return moved, true, stayed
	}
	return 1, false, defenderDice
}
