// Package agent holds the player agents: a human deferring to an input collaborator and a
// heuristic AI. Both answer the same decision request.
package agent

import (
	"context"
	"fmt"

	"stackrankdice/game"
)

type Kind int

const (
	HumanKind Kind = iota
	AIKind
)

func (k Kind) String() string {
	switch k {
	case HumanKind:
		return "human"
	case AIKind:
		return "ai"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request asks the active player for its next move. State is a copy the agent may read or
// modify freely; nothing it does reaches the game.
type Request struct {
	Player int
	Phase  game.Phase
	State  *game.GameState
}

// NewRequest snapshots gs for its current player.
func NewRequest(gs *game.GameState) Request {
	return Request{
		Player: gs.CurrentPlayer(),
		Phase:  gs.Turn.Phase,
		State:  gs.Copy(),
	}
}

// Agent decides one move at a time. An attack move proposes an attack, a reinforce move
// places one die, and a pass ends the current phase.
type Agent interface {
	Kind() Kind
	Decide(ctx context.Context, req Request) (game.Move, error)
}

// Rejecter is implemented by agents that want to hear why a move was refused.
type Rejecter interface {
	Rejected(move game.Move, err error)
}
