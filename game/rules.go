package game

import "stackrankdice/dice"

type Rules interface {
	// MaxDice is the per-region dice cap.
	MaxDice() int
	// ReinforcementPool sizes a player's reinforcement from their contiguous clusters.
	ReinforcementPool(clusters [][]int) int
	// SingleAttackPerRegion forbids a region from attacking twice in one turn.
	SingleAttackPerRegion() bool
	// DetermineSpoils splits a winning attacker's dice between the conquered region and
	// the region the attack came from.
	DetermineSpoils(attackerDice int, src dice.Source) (conquered, left int)
	// DetermineDefeat settles a failed attack. When captured is true the defender takes
	// the attacking region with attackerLeft dice and keeps defenderLeft.
	DetermineDefeat(attackerDice, defenderDice int, src dice.Source) (attackerLeft int, captured bool, defenderLeft int)
}
