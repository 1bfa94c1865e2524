// Package communication connects human players to a session through a text console.
package communication

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"stackrankdice/agent"
	"stackrankdice/game"
)

// Console reads moves typed on in and writes prompts to out. It implements agent.Input and
// agent.Notifier.
type Console struct {
	in    io.Reader
	out   io.Writer
	once  sync.Once
	lines chan string
	err   error
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: in, out: out, lines: make(chan string)}
}

// Next prompts the requesting player until a well-formed command arrives. Whether the
// move is legal is left to the engine.
func (c *Console) Next(ctx context.Context, req agent.Request) (game.Move, error) {
	c.once.Do(func() { go c.read() })

	for {
		c.prompt(req)
		var line string
		select {
		case <-ctx.Done():
			return game.Move{}, ctx.Err()
		case l, ok := <-c.lines:
			if !ok {
				return game.Move{}, fmt.Errorf("console closed: %w", c.err)
			}
			line = l
		}

		switch strings.TrimSpace(strings.ToLower(line)) {
		case "":
			continue
		case "help", "?":
			fmt.Fprintln(c.out, "commands: attack <from> <to> | reinforce <region> | end | board | moves")
			continue
		case "board":
			Render(c.out, req.State)
			continue
		case "moves":
			for _, m := range req.State.LegalMoves() {
				fmt.Fprintf(c.out, "  %s\n", m)
			}
			continue
		}

		move, err := ParseMove(line)
		if err != nil {
			fmt.Fprintf(c.out, "%v\n", err)
			continue
		}
		return move, nil
	}
}

func (c *Console) Notify(msg string) {
	fmt.Fprintln(c.out, msg)
}

func (c *Console) prompt(req agent.Request) {
	if req.Phase == game.ReinforcementPhase {
		fmt.Fprintf(c.out, "player %d, turn %d, %d dice to place> ", req.Player, req.State.Turn.Number, req.State.Turn.Pool)
		return
	}
	fmt.Fprintf(c.out, "player %d, turn %d, %s> ", req.Player, req.State.Turn.Number, req.Phase)
}

// read feeds lines to Next. An EOF or read error closes the channel.
func (c *Console) read() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.lines <- scanner.Text()
	}
	c.err = scanner.Err()
	if c.err == nil {
		c.err = io.EOF
	}
	close(c.lines)
}

// ParseMove reads "attack <from> <to>", "reinforce <region>" or "end".
func ParseMove(line string) (game.Move, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return game.Move{}, fmt.Errorf("empty command")
	}

	ids := make([]int, 0, 2)
	for _, f := range fields[1:] {
		id, err := strconv.Atoi(f)
		if err != nil {
			return game.Move{}, fmt.Errorf("%q is not a region id", f)
		}
		ids = append(ids, id)
	}

	switch fields[0] {
	case "attack", "a":
		if len(ids) != 2 {
			return game.Move{}, fmt.Errorf("usage: attack <from> <to>")
		}
		return game.AttackMove(ids[0], ids[1]), nil
	case "reinforce", "r":
		if len(ids) != 1 {
			return game.Move{}, fmt.Errorf("usage: reinforce <region>")
		}
		return game.ReinforceMove(ids[0]), nil
	case "end", "pass", "e":
		if len(ids) != 0 {
			return game.Move{}, fmt.Errorf("usage: end")
		}
		return game.PassMove(), nil
	default:
		return game.Move{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

// Render writes one line per region: id, owner, dice and neighbours.
func Render(w io.Writer, gs *game.GameState) {
	for _, r := range gs.Board.Regions {
		marker := ""
		if gs.Attacked[r.ID] {
			marker = " *"
		}
		fmt.Fprintf(w, "%3d  p%d  %s  -> %v%s\n", r.ID, gs.Owners[r.ID], strings.Repeat("o", gs.Dice[r.ID]), r.Adjacent, marker)
	}
	for _, p := range gs.Players {
		if p.Alive {
			fmt.Fprintf(w, "p%d: %d regions, %d dice, largest cluster %d\n", p.ID, gs.RegionCount(p.ID), gs.DiceCount(p.ID), gs.LargestCluster(p.ID))
		}
	}
}
