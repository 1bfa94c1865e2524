package game

import "math"

// EvaluateResources tallies regions and dice against the strongest opponent.
func EvaluateResources(gs *GameState, player int) float64 {
	regionScore, diceScore := gs.calculateResourceScores(player)
	return (regionScore + diceScore) / 2.0
}

// EvaluateConnectivity adds the largest contiguous cluster, which drives reinforcements,
// to the resource tally.
func EvaluateConnectivity(gs *GameState, player int) float64 {
	regionScore, diceScore := gs.calculateResourceScores(player)
	connectivityScore := gs.calculateConnectivityScore(player)
	return (regionScore + diceScore + connectivityScore) / 3.0
}

// EvaluateBorderStrength adds how well player's frontier holds against its neighbors.
func EvaluateBorderStrength(gs *GameState, player int) float64 {
	regionScore, diceScore := gs.calculateResourceScores(player)
	borderScore := gs.calculateBorderScore(player)
	return (regionScore + diceScore + borderScore) / 3.0
}

// strongestOpponent returns the alive opponent with the most dice, or -1.
func (gs *GameState) strongestOpponent(player int) int {
	best, bestDice := -1, -1
	for _, p := range gs.Players {
		if p.ID == player || !p.Alive {
			continue
		}
		if d := gs.DiceCount(p.ID); d > bestDice {
			best, bestDice = p.ID, d
		}
	}
	return best
}

func (gs *GameState) calculateResourceScores(player int) (regionScore, diceScore float64) {
	opponent := gs.strongestOpponent(player)
	regionScore = normalize(float64(gs.RegionCount(player)), float64(gs.RegionCount(opponent)))
	diceScore = normalize(float64(gs.DiceCount(player)), float64(gs.DiceCount(opponent)))
	return regionScore, diceScore
}

func (gs *GameState) calculateConnectivityScore(player int) float64 {
	opponent := gs.strongestOpponent(player)
	return normalize(float64(gs.LargestCluster(player)), float64(gs.LargestCluster(opponent)))
}

func (gs *GameState) calculateBorderScore(player int) float64 {
	opponent := gs.strongestOpponent(player)
	borderStrength := make(map[int]float64) // By player

	for region, owner := range gs.Owners {
		if owner != player && owner != opponent {
			continue
		}

		myDice := float64(gs.Dice[region])
		enemyBorders := 0
		diceDiff := 0.0
		for _, neighbor := range gs.Board.Regions[region].Adjacent {
			if gs.Owners[neighbor] != owner {
				enemyBorders++
				diceDiff += myDice - float64(gs.Dice[neighbor])
			}
		}
		// Scale by square root to favor but not overly favor multiple lines of attack
		if enemyBorders > 0 {
			borderStrength[owner] += diceDiff / math.Sqrt(float64(enemyBorders))
		}
	}

	return normalize(borderStrength[player], borderStrength[opponent])
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := math.Abs(value) + math.Abs(otherValue)
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}
