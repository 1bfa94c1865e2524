// Package engine sequences the phases of a turn and applies battle outcomes to the game
// state. It is the only code that mutates a game.GameState.
package engine

import (
	"fmt"

	"stackrankdice/dice"
	"stackrankdice/game"
)

// TurnEngine is the turn state machine:
//
//	AwaitingAttack --attack--> AwaitingAttack
//	AwaitingAttack --pass--> Reinforcement --pool spent/pass--> TurnEnding
//	TurnEnding --> AwaitingAttack (next alive player) | GameOver
//
// Every action runs to completion before the next one is accepted.
type TurnEngine struct {
	state  *game.GameState
	src    dice.Source
	broken error
}

func New(state *game.GameState, src dice.Source) *TurnEngine {
	return &TurnEngine{state: state, src: src}
}

// State returns a copy of the current state.
func (e *TurnEngine) State() *game.GameState {
	return e.state.Copy()
}

// Phase returns the current phase without copying the state.
func (e *TurnEngine) Phase() game.Phase {
	return e.state.Turn.Phase
}

// Apply dispatches a move taken by player.
func (e *TurnEngine) Apply(player int, move game.Move) ([]Event, error) {
	switch move.Type {
	case game.AttackAction:
		return e.Attack(player, move.Attack())
	case game.ReinforceAction:
		return e.Reinforce(player, move.To)
	case game.PassAction:
		if e.state.Turn.Phase == game.ReinforcementPhase {
			return e.FinishReinforcement(player)
		}
		return e.EndAttackPhase(player)
	default:
		return nil, &game.InvalidActionError{Reason: game.ReasonUnknownAction, Detail: fmt.Sprintf("unknown action %s", move.Type)}
	}
}

// Attack resolves an attack declaration. A rejected declaration leaves the state untouched.
func (e *TurnEngine) Attack(player int, attack game.Attack) ([]Event, error) {
	if e.broken != nil {
		return nil, e.broken
	}
	gs := e.state
	if err := gs.ValidateAttack(player, attack); err != nil {
		return nil, err
	}

	outcome := game.ResolveBattle(gs.Rules, game.Clash{
		Attack:        attack,
		AttackerOwner: gs.Owners[attack.From],
		AttackerDice:  gs.Dice[attack.From],
		DefenderOwner: gs.Owners[attack.To],
		DefenderDice:  gs.Dice[attack.To],
	}, e.src)

	for _, change := range outcome.Changes {
		gs.Owners[change.Region] = change.Owner
		gs.Dice[change.Region] = change.Dice
	}
	gs.Attacked[attack.From] = true

	return e.commit([]Event{AttackResolved{Player: player, Outcome: outcome}})
}

// EndAttackPhase moves player to reinforcement and grants one die per contiguous cluster.
func (e *TurnEngine) EndAttackPhase(player int) ([]Event, error) {
	if e.broken != nil {
		return nil, e.broken
	}
	gs := e.state
	if err := e.state.ValidatePhase(player, game.AwaitingAttackPhase); err != nil {
		return nil, err
	}

	pool := gs.Rules.ReinforcementPool(gs.ConnectedRegions(player))
	gs.Turn.Phase = game.ReinforcementPhase
	gs.Turn.Pool = pool
	events := []Event{ReinforcementGranted{Player: player, Pool: pool}}

	if pool == 0 || !e.hasRoom(player) {
		events = append(events, e.forfeit(player)...)
		events = append(events, e.endTurn()...)
	}
	return e.commit(events)
}

// Reinforce places one die from the pool on region. Full regions are rejected. The turn
// ends once the pool is spent or nothing owned can take another die.
func (e *TurnEngine) Reinforce(player, region int) ([]Event, error) {
	if e.broken != nil {
		return nil, e.broken
	}
	gs := e.state
	if err := gs.ValidateReinforcement(player, region); err != nil {
		return nil, err
	}

	gs.Dice[region]++
	gs.Turn.Pool--
	events := []Event{ReinforcementApplied{Player: player, Region: region, Added: 1}}

	if gs.Turn.Pool == 0 || !e.hasRoom(player) {
		events = append(events, e.forfeit(player)...)
		events = append(events, e.endTurn()...)
	}
	return e.commit(events)
}

// FinishReinforcement forfeits whatever is left of the pool and ends the turn.
func (e *TurnEngine) FinishReinforcement(player int) ([]Event, error) {
	if e.broken != nil {
		return nil, e.broken
	}
	if err := e.state.ValidatePhase(player, game.ReinforcementPhase); err != nil {
		return nil, err
	}
	events := e.forfeit(player)
	events = append(events, e.endTurn()...)
	return e.commit(events)
}

// Stop ends the game from outside, without a winner unless one is already decided.
func (e *TurnEngine) Stop() []Event {
	gs := e.state
	if gs.IsOver() {
		return nil
	}
	gs.Turn.Phase = game.GameOverPhase
	gs.Turn.Pool = 0
	return []Event{GameOver{Winner: gs.Winner}}
}

func (e *TurnEngine) hasRoom(player int) bool {
	maxDice := e.state.Rules.MaxDice()
	for _, region := range e.state.OwnedRegions(player) {
		if e.state.Dice[region] < maxDice {
			return true
		}
	}
	return false
}

func (e *TurnEngine) forfeit(player int) []Event {
	gs := e.state
	if gs.Turn.Pool == 0 {
		return nil
	}
	lost := gs.Turn.Pool
	gs.Turn.Pool = 0
	return []Event{ReinforcementForfeited{Player: player, Dice: lost}}
}

// endTurn runs the turn-ending checks: eliminations, game over, then the next alive player.
func (e *TurnEngine) endTurn() []Event {
	gs := e.state
	gs.Turn.Phase = game.TurnEndingPhase
	gs.Turn.Pool = 0

	var events []Event
	for i := range gs.Players {
		if gs.Players[i].Alive && gs.RegionCount(i) == 0 {
			gs.Players[i].Alive = false
			events = append(events, PlayerEliminated{Player: i})
		}
	}

	alive := gs.AlivePlayers()
	if len(alive) == 1 {
		gs.Winner = alive[0]
		gs.Turn.Phase = game.GameOverPhase
		return append(events, GameOver{Winner: gs.Winner})
	}

	gs.Turn.Player = gs.NextAlivePlayer(gs.Turn.Player)
	gs.Turn.Number++
	gs.Turn.Phase = game.AwaitingAttackPhase
	clear(gs.Attacked)
	return append(events, TurnAdvanced{Player: gs.Turn.Player, Turn: gs.Turn.Number})
}

func (e *TurnEngine) commit(events []Event) ([]Event, error) {
	if err := e.state.CheckInvariants(); err != nil {
		e.broken = fmt.Errorf("state after %d events: %w", len(events), err)
		return events, e.broken
	}
	return events, nil
}
