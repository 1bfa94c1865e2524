package engine

import (
	"fmt"

	"stackrankdice/game"
)

// Event is a read-only notification emitted after an accepted action.
type Event interface {
	Kind() string
}

type AttackResolved struct {
	Player  int
	Outcome game.BattleOutcome
}

type ReinforcementGranted struct {
	Player int
	Pool   int
}

type ReinforcementApplied struct {
	Player int
	Region int
	Added  int
}

// ReinforcementForfeited reports dice a player could not or chose not to place.
type ReinforcementForfeited struct {
	Player int
	Dice   int
}

type PlayerEliminated struct {
	Player int
}

type TurnAdvanced struct {
	Player int
	Turn   int
}

// GameOver ends the event stream. Winner is -1 when the game was stopped without one.
type GameOver struct {
	Winner int
}

func (AttackResolved) Kind() string         { return "attack_resolved" }
func (ReinforcementGranted) Kind() string   { return "reinforcement_granted" }
func (ReinforcementApplied) Kind() string   { return "reinforcement_applied" }
func (ReinforcementForfeited) Kind() string { return "reinforcement_forfeited" }
func (PlayerEliminated) Kind() string       { return "player_eliminated" }
func (TurnAdvanced) Kind() string           { return "turn_advanced" }
func (GameOver) Kind() string               { return "game_over" }

func (e AttackResolved) String() string {
	o := e.Outcome
	return fmt.Sprintf("player %d attacked %d->%d: %v=%d vs %v=%d, %s",
		e.Player, o.Attack.From, o.Attack.To, o.AttackerRolls, o.AttackerSum, o.DefenderRolls, o.DefenderSum, o.Result)
}
