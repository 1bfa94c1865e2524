package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"stackrankdice/dice"
	"stackrankdice/game"
)

func lineState(t *testing.T, rules game.Rules, players int, owners, diceCounts []int) *game.GameState {
	t.Helper()
	cells := make([]game.HexCoord, len(owners))
	for i := range cells {
		cells[i] = game.HexCoord{Q: i, R: 0}
	}
	board, err := game.NewCellBoard(cells...)
	require.NoError(t, err)
	gs, err := game.NewGameState(board, rules, players, owners, diceCounts)
	require.NoError(t, err)
	return gs
}

func TestReinforcement(t *testing.T) {
	t.Run("grants one die per cluster and rejects full regions", func(t *testing.T) {
		gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1, 0, 1}, []int{2, 3, 8, 1})
		e := New(gs, dice.NewSequence())

		events, err := e.EndAttackPhase(0)
		require.NoError(t, err)
		require.Equal(t, []Event{ReinforcementGranted{Player: 0, Pool: 2}}, events, "Two separate clusters grant two dice")
		require.Equal(t, game.ReinforcementPhase, e.Phase())

		before := e.State().Hash()
		_, err = e.Reinforce(0, 2)
		require.ErrorIs(t, err, game.ErrInvalidAction)
		require.Equal(t, game.ReasonRegionFull, game.ReasonOf(err))
		require.Equal(t, before, e.State().Hash(), "A rejected placement must not touch the state")
		require.Equal(t, 2, e.State().Turn.Pool, "Pool is unchanged after rejection")

		events, err = e.Reinforce(0, 0)
		require.NoError(t, err)
		require.Equal(t, []Event{ReinforcementApplied{Player: 0, Region: 0, Added: 1}}, events)

		events, err = e.Reinforce(0, 0)
		require.NoError(t, err)
		require.Equal(t, []Event{
			ReinforcementApplied{Player: 0, Region: 0, Added: 1},
			TurnAdvanced{Player: 1, Turn: 2},
		}, events, "Spending the pool ends the turn")

		state := e.State()
		require.Equal(t, 4, state.Dice[0])
		require.Equal(t, 0, state.Turn.Pool)
		require.Equal(t, game.AwaitingAttackPhase, state.Turn.Phase)
	})

	t.Run("forfeits the pool when every region is full", func(t *testing.T) {
		gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1}, []int{8, 8})
		e := New(gs, dice.NewSequence())

		events, err := e.EndAttackPhase(0)
		require.NoError(t, err)
		require.Equal(t, []Event{
			ReinforcementGranted{Player: 0, Pool: 1},
			ReinforcementForfeited{Player: 0, Dice: 1},
			TurnAdvanced{Player: 1, Turn: 2},
		}, events)
	})

	t.Run("finishing early forfeits the rest", func(t *testing.T) {
		gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1, 0}, []int{1, 1, 1})
		e := New(gs, dice.NewSequence())

		_, err := e.EndAttackPhase(0)
		require.NoError(t, err)
		events, err := e.FinishReinforcement(0)
		require.NoError(t, err)
		require.Equal(t, []Event{
			ReinforcementForfeited{Player: 0, Dice: 2},
			TurnAdvanced{Player: 1, Turn: 2},
		}, events)
	})

	t.Run("largest cluster bonus", func(t *testing.T) {
		rules := game.NewStandardRules()
		rules.LargestClusterBonus = true
		gs := lineState(t, rules, 2, []int{0, 0, 0, 1, 0}, []int{1, 1, 1, 1, 1})
		e := New(gs, dice.NewSequence())

		events, err := e.EndAttackPhase(0)
		require.NoError(t, err)
		require.Equal(t, ReinforcementGranted{Player: 0, Pool: 5}, events[0], "Two clusters plus a largest cluster of three")
	})
}

func TestElimination(t *testing.T) {
	t.Run("conquering the last enemy region ends the game", func(t *testing.T) {
		gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1}, []int{5, 3})
		e := New(gs, dice.NewSequence(6, 6, 6, 6, 6, 1, 1, 1))

		events, err := e.Attack(0, game.Attack{From: 0, To: 1})
		require.NoError(t, err)
		require.Len(t, events, 1)
		resolved := events[0].(AttackResolved)
		require.True(t, resolved.Outcome.Conquered())

		state := e.State()
		require.Equal(t, []int{0, 0}, state.Owners)
		require.Equal(t, []int{1, 4}, state.Dice)
		require.True(t, state.Players[1].Alive, "Elimination waits for the end of the turn")

		_, err = e.EndAttackPhase(0)
		require.NoError(t, err)
		events, err = e.Reinforce(0, 0)
		require.NoError(t, err)
		require.Equal(t, []Event{
			ReinforcementApplied{Player: 0, Region: 0, Added: 1},
			PlayerEliminated{Player: 1},
			GameOver{Winner: 0},
		}, events)

		state = e.State()
		require.True(t, state.IsOver())
		require.Equal(t, 0, state.Winner)
		require.False(t, state.Players[1].Alive)

		_, err = e.Attack(0, game.Attack{From: 1, To: 0})
		require.Equal(t, game.ReasonGameOver, game.ReasonOf(err))
	})

	t.Run("turn order skips eliminated players", func(t *testing.T) {
		gs := lineState(t, game.NewStandardRules(), 3, []int{0, 1, 2}, []int{2, 1, 1})
		e := New(gs, dice.NewSequence(6, 6, 1))

		_, err := e.Attack(0, game.Attack{From: 0, To: 1})
		require.NoError(t, err)
		_, err = e.EndAttackPhase(0)
		require.NoError(t, err)
		events, err := e.Reinforce(0, 0)
		require.NoError(t, err)
		require.Equal(t, []Event{
			ReinforcementApplied{Player: 0, Region: 0, Added: 1},
			PlayerEliminated{Player: 1},
			TurnAdvanced{Player: 2, Turn: 2},
		}, events)
		require.Equal(t, []bool{false, false, false}, e.State().Attacked, "Attack marks are cleared between turns")

		_, err = e.EndAttackPhase(2)
		require.NoError(t, err)
		events, err = e.FinishReinforcement(2)
		require.NoError(t, err)
		require.Equal(t, []Event{
			ReinforcementForfeited{Player: 2, Dice: 1},
			TurnAdvanced{Player: 0, Turn: 3},
		}, events, "Turn order wraps back to player 0")
	})
}

func TestRejections(t *testing.T) {
	gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1, 1}, []int{1, 2, 1})
	e := New(gs, dice.NewSequence())
	before := e.State().Hash()

	cases := []struct {
		name   string
		player int
		attack game.Attack
		reason game.Reason
	}{
		{"wrong player", 1, game.Attack{From: 1, To: 0}, game.ReasonWrongPlayer},
		{"unknown region", 0, game.Attack{From: 0, To: 9}, game.ReasonUnknownRegion},
		{"not owner", 0, game.Attack{From: 1, To: 0}, game.ReasonNotOwner},
		{"not adjacent", 0, game.Attack{From: 0, To: 2}, game.ReasonNotAdjacent},
		{"not enough dice", 0, game.Attack{From: 0, To: 1}, game.ReasonNotEnoughDice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Attack(tc.player, tc.attack)
			require.ErrorIs(t, err, game.ErrInvalidAction)
			require.Equal(t, tc.reason, game.ReasonOf(err))
			require.Equal(t, before, e.State().Hash(), "Rejections leave the state unchanged")
		})
	}

	t.Run("reinforcing during the attack phase", func(t *testing.T) {
		_, err := e.Reinforce(0, 0)
		require.Equal(t, game.ReasonWrongPhase, game.ReasonOf(err))
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := e.Apply(0, game.Move{Type: game.ActionType(42)})
		require.Equal(t, game.ReasonUnknownAction, game.ReasonOf(err))
	})
}

func TestApply(t *testing.T) {
	gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1}, []int{2, 1})
	e := New(gs, dice.NewSequence(1, 1, 6))

	events, err := e.Apply(0, game.AttackMove(0, 1))
	require.NoError(t, err)
	require.Equal(t, game.DefenderWins, events[0].(AttackResolved).Outcome.Result)
	require.Equal(t, []int{1, 1}, e.State().Dice, "A failed attack keeps one die behind")

	events, err = e.Apply(0, game.PassMove())
	require.NoError(t, err)
	require.Equal(t, ReinforcementGranted{Player: 0, Pool: 1}, events[0], "Pass ends the attack phase")

	events, err = e.Apply(0, game.ReinforceMove(0))
	require.NoError(t, err)
	require.Equal(t, TurnAdvanced{Player: 1, Turn: 2}, events[len(events)-1])
}

func TestStop(t *testing.T) {
	gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1}, []int{2, 1})
	e := New(gs, dice.NewSequence())

	require.Equal(t, []Event{GameOver{Winner: -1}}, e.Stop())
	require.Nil(t, e.Stop(), "Stopping twice emits nothing")

	_, err := e.EndAttackPhase(0)
	require.Equal(t, game.ReasonGameOver, game.ReasonOf(err))
}

func TestInvariantViolationLatches(t *testing.T) {
	gs := lineState(t, game.NewStandardRules(), 2, []int{0, 1, 1}, []int{2, 1, 1})
	e := New(gs, dice.NewSequence())
	gs.Dice[2] = 9

	_, err := e.EndAttackPhase(0)
	require.ErrorIs(t, err, game.ErrInvariantViolation)
	var violation *game.InvariantViolation
	require.True(t, errors.As(err, &violation))

	_, err = e.Reinforce(0, 0)
	require.ErrorIs(t, err, game.ErrInvariantViolation, "The engine refuses actions after a violation")
}
