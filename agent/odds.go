package agent

import (
	"sync"

	"stackrankdice/meta"
)

var (
	oddsOnce  sync.Once
	oddsTable [][]float64 // oddsTable[a][d] for 1 <= a, d <= meta.MAX_DICE
)

// WinProbability returns the exact chance that a dice beat d dice, ties going to the
// defender.
func WinProbability(a, d int) float64 {
	if a < 1 {
		return 0
	}
	if d < 1 {
		return 1
	}
	if a <= meta.MAX_DICE && d <= meta.MAX_DICE {
		oddsOnce.Do(buildOddsTable)
		return oddsTable[a][d]
	}
	return strictlyGreater(sumDistribution(a), sumDistribution(d))
}

func buildOddsTable() {
	dists := make([][]float64, meta.MAX_DICE+1)
	for n := 1; n <= meta.MAX_DICE; n++ {
		dists[n] = sumDistribution(n)
	}
	oddsTable = make([][]float64, meta.MAX_DICE+1)
	for a := 1; a <= meta.MAX_DICE; a++ {
		oddsTable[a] = make([]float64, meta.MAX_DICE+1)
		for d := 1; d <= meta.MAX_DICE; d++ {
			oddsTable[a][d] = strictlyGreater(dists[a], dists[d])
		}
	}
}

// sumDistribution returns P(sum = s) for n fair dice, indexed by s.
func sumDistribution(n int) []float64 {
	dist := []float64{1}
	for range n {
		next := make([]float64, len(dist)+meta.DIE_FACES)
		for s, p := range dist {
			if p == 0 {
				continue
			}
			for face := 1; face <= meta.DIE_FACES; face++ {
				next[s+face] += p / meta.DIE_FACES
			}
		}
		dist = next
	}
	return dist
}

func strictlyGreater(attacker, defender []float64) float64 {
	// below[s] = P(defender sum < s)
	below := make([]float64, len(attacker)+1)
	for s := 1; s < len(below); s++ {
		below[s] = below[s-1]
		if s-1 < len(defender) {
			below[s] += defender[s-1]
		}
	}
	win := 0.0
	for s, p := range attacker {
		win += p * below[s]
	}
	return win
}
