package communication

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stackrankdice/agent"
	"stackrankdice/game"
)

func request(t *testing.T) agent.Request {
	t.Helper()
	board, err := game.NewCellBoard(game.HexCoord{Q: 0, R: 0}, game.HexCoord{Q: 1, R: 0})
	require.NoError(t, err)
	gs, err := game.NewGameState(board, game.NewStandardRules(), 2, []int{0, 1}, []int{3, 1})
	require.NoError(t, err)
	return agent.NewRequest(gs)
}

func TestParseMove(t *testing.T) {
	t.Run("accepts every command", func(t *testing.T) {
		cases := map[string]game.Move{
			"attack 3 4":  game.AttackMove(3, 4),
			"A 3 4":       game.AttackMove(3, 4),
			"reinforce 2": game.ReinforceMove(2),
			" r 2 ":       game.ReinforceMove(2),
			"end":         game.PassMove(),
			"pass":        game.PassMove(),
		}
		for line, want := range cases {
			got, err := ParseMove(line)
			require.NoError(t, err, line)
			require.Equal(t, want, got, line)
		}
	})

	t.Run("rejects malformed commands", func(t *testing.T) {
		for _, line := range []string{"", "attack 1", "attack x 2", "reinforce", "end 3", "fly 1 2"} {
			_, err := ParseMove(line)
			require.Error(t, err, "%q should not parse", line)
		}
	})
}

func TestConsole(t *testing.T) {
	t.Run("reprompts until a command parses", func(t *testing.T) {
		var out bytes.Buffer
		c := NewConsole(strings.NewReader("nonsense\n\nmoves\nattack 0 1\n"), &out)

		move, err := c.Next(context.Background(), request(t))
		require.NoError(t, err)
		require.Equal(t, game.AttackMove(0, 1), move)
		require.Contains(t, out.String(), `unknown command "nonsense"`)
		require.Contains(t, out.String(), "attack 0->1", "The moves command lists legal moves")
	})

	t.Run("reports the end of input", func(t *testing.T) {
		c := NewConsole(strings.NewReader(""), io.Discard)
		_, err := c.Next(context.Background(), request(t))
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("stops waiting when cancelled", func(t *testing.T) {
		in, w := io.Pipe()
		defer w.Close()
		c := NewConsole(in, io.Discard)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := c.Next(ctx, request(t))
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("shows notifications", func(t *testing.T) {
		var out bytes.Buffer
		NewConsole(strings.NewReader(""), &out).Notify("no")
		require.Equal(t, "no\n", out.String())
	})
}

func TestRender(t *testing.T) {
	var out bytes.Buffer
	Render(&out, request(t).State)
	require.Contains(t, out.String(), "  0  p0  ooo  -> [1]")
	require.Contains(t, out.String(), "p1: 1 regions, 1 dice, largest cluster 1")
}
