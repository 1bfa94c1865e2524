// Package game holds the rules of the dice conquest game: the hex board topology, the
// per-region state, battle resolution and the legal-move and invariant checks that the
// engine builds on.
package game

// Evaluate scores the state from player's perspective between -1 (hopeless) and 1 (won).
type Evaluate func(gs *GameState, player int) float64
