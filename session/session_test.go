package session

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"stackrankdice/agent"
	"stackrankdice/boardgen"
	"stackrankdice/dice"
	"stackrankdice/engine"
	"stackrankdice/game"
)

func lineState(t *testing.T, owners, diceCounts []int) *game.GameState {
	t.Helper()
	cells := make([]game.HexCoord, len(owners))
	for i := range cells {
		cells[i] = game.HexCoord{Q: i, R: 0}
	}
	board, err := game.NewCellBoard(cells...)
	require.NoError(t, err)
	gs, err := game.NewGameState(board, game.NewStandardRules(), 2, owners, diceCounts)
	require.NoError(t, err)
	return gs
}

func smallSetup() Setup {
	board := boardgen.DefaultConfig()
	board.Players = 3
	board.Size = 12
	board.PatchesPerPlayer = 4
	return Setup{
		Board: board,
		Rules: *game.NewStandardRules(),
		Seeds: dice.Seeds{World: 5, Env: 9},
	}
}

func aiPlayers(n int) []agent.Agent {
	agents := make([]agent.Agent, n)
	for i := range agents {
		agents[i] = agent.NewAI()
	}
	return agents
}

type passer struct{}

func (passer) Kind() agent.Kind { return agent.AIKind }

func (passer) Decide(ctx context.Context, req agent.Request) (game.Move, error) {
	return game.PassMove(), nil
}

// stubborn always proposes the same move and counts the refusals.
type stubborn struct {
	move     game.Move
	refusals int
}

func (s *stubborn) Kind() agent.Kind { return agent.HumanKind }

func (s *stubborn) Decide(ctx context.Context, req agent.Request) (game.Move, error) {
	return s.move, nil
}

func (s *stubborn) Rejected(move game.Move, err error) { s.refusals++ }

func kinds(events []engine.Event) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.Kind())
	}
	return out
}

func TestLastConquestEndsGame(t *testing.T) {
	gs := lineState(t, []int{0, 1}, []int{5, 3})
	src := dice.NewSequence(6, 6, 6, 6, 6, 1, 1, 1)

	var seen []string
	s, err := New(gs, aiPlayers(2), src,
		WithLogger(zerolog.Nop()),
		WithObserver(ObserverFunc(func(u Update) { seen = append(seen, kinds(u.Events)...) })))
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Result{Winner: 0, Turns: 1, Moves: 3}, res)
	require.Equal(t, []string{
		"attack_resolved",
		"reinforcement_granted",
		"reinforcement_applied", "player_eliminated", "game_over",
	}, seen)
	require.Zero(t, src.Remaining(), "Exactly one battle was rolled")

	state := s.State()
	require.False(t, state.Players[1].Alive)
	require.Equal(t, []int{0, 0}, state.Owners)
	require.Nil(t, s.Record(), "Sessions on a given state keep no record")

	_, err = s.Step(context.Background())
	require.ErrorIs(t, err, ErrFinished)
}

func TestFullGame(t *testing.T) {
	play := func(t *testing.T) (Result, *Record, [][]engine.Event) {
		var events [][]engine.Event
		regions := -1
		alive := map[int]bool{0: true, 1: true, 2: true}

		sweep := ObserverFunc(func(u Update) {
			require.NoError(t, u.State.CheckInvariants(), "Invariants hold after %s", u.Move)
			if regions < 0 {
				regions = u.State.Board.NumRegions()
			}
			require.Len(t, u.State.Owners, regions)
			for _, p := range u.State.Players {
				if !alive[p.ID] {
					require.False(t, p.Alive, "Eliminated players never come back")
				}
				alive[p.ID] = p.Alive
			}
			events = append(events, u.Events)
		})

		s, err := Start(smallSetup(), aiPlayers(3), WithLogger(zerolog.Nop()), WithObserver(sweep))
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)
		require.True(t, s.IsOver())
		return res, s.Record(), events
	}

	t.Run("finishes with invariants intact", func(t *testing.T) {
		res, rec, _ := play(t)
		require.Len(t, rec.Decisions, res.Moves)
		if !res.Stopped {
			require.GreaterOrEqual(t, res.Winner, 0)
		}
	})

	t.Run("is deterministic for fixed seeds", func(t *testing.T) {
		resA, recA, eventsA := play(t)
		resB, recB, eventsB := play(t)
		require.Equal(t, resA, resB)
		require.Equal(t, recA.FinalHash, recB.FinalHash)
		require.Equal(t, recA.Decisions, recB.Decisions)
		require.Equal(t, eventsA, eventsB)
	})

	t.Run("replays from a saved record", func(t *testing.T) {
		res, rec, events := play(t)

		var buf bytes.Buffer
		require.NoError(t, rec.Save(&buf))
		loaded, err := LoadRecord(&buf)
		require.NoError(t, err)
		require.Equal(t, rec.Decisions, loaded.Decisions)

		var replayed [][]engine.Event
		collect := ObserverFunc(func(u Update) { replayed = append(replayed, u.Events) })
		replayRes, err := Replay(context.Background(), loaded, WithLogger(zerolog.Nop()), WithObserver(collect))
		require.NoError(t, err)
		require.Equal(t, res.Winner, replayRes.Winner)
		require.Equal(t, res.Turns, replayRes.Turns)
		require.Equal(t, events, replayed, "Replay emits the same events")
	})

	t.Run("replay detects a different ending", func(t *testing.T) {
		_, rec, _ := play(t)
		rec.FinalHash++
		_, err := Replay(context.Background(), rec, WithLogger(zerolog.Nop()))
		require.ErrorContains(t, err, "replay diverged")
	})
}

func TestRejections(t *testing.T) {
	t.Run("falls back to the first legal move", func(t *testing.T) {
		gs := lineState(t, []int{0, 1}, []int{2, 1})
		bad := &stubborn{move: game.AttackMove(1, 0)}
		s, err := New(gs, []agent.Agent{bad, agent.NewAI()}, dice.NewSequence(6, 6, 1),
			WithLogger(zerolog.Nop()), WithMaxRejections(2))
		require.NoError(t, err)

		u, err := s.Step(context.Background())
		require.NoError(t, err)
		require.Equal(t, game.ReasonNotOwner, game.ReasonOf(u.Rejected))
		require.Empty(t, u.Events)
		require.Equal(t, 1, bad.refusals)

		u, err = s.Step(context.Background())
		require.NoError(t, err)
		require.NoError(t, u.Rejected)
		require.True(t, u.Auto)
		require.Equal(t, game.AttackMove(0, 1), u.Move, "First legal move replaces the refused one")
		require.Equal(t, 2, bad.refusals)
	})

	t.Run("a wrong agent count is refused", func(t *testing.T) {
		gs := lineState(t, []int{0, 1}, []int{2, 1})
		_, err := New(gs, aiPlayers(3), dice.NewSequence())
		require.Error(t, err)

		_, err = Start(smallSetup(), aiPlayers(2))
		require.Error(t, err)
	})
}

func TestTurnLimit(t *testing.T) {
	gs := lineState(t, []int{0, 1}, []int{2, 1})
	s, err := New(gs, []agent.Agent{passer{}, passer{}}, dice.NewSequence(),
		WithLogger(zerolog.Nop()), WithMaxTurns(3))
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Stopped)
	require.Equal(t, -1, res.Winner)
	require.Equal(t, 4, res.Turns)
	require.Equal(t, 6, res.Moves, "Two decisions per turn for three turns")
}

func TestStatsFollowTurns(t *testing.T) {
	gs := lineState(t, []int{0, 1, 0}, []int{2, 1, 1})
	s, err := New(gs, []agent.Agent{passer{}, passer{}}, dice.NewSequence(), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.Equal(t, gs.Stats(), s.Stats())

	_, err = s.Step(context.Background()) // end attack phase
	require.NoError(t, err)
	_, err = s.Step(context.Background()) // forfeit reinforcements
	require.NoError(t, err)
	require.Equal(t, 1, s.State().CurrentPlayer())
	require.Equal(t, s.State().Stats(), s.Stats())
}

func TestCancelledRun(t *testing.T) {
	gs := lineState(t, []int{0, 1}, []int{2, 1})
	s, err := New(gs, aiPlayers(2), dice.NewSeeded(1), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
