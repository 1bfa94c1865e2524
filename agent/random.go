package agent

import (
	"context"

	"stackrankdice/dice"
	"stackrankdice/game"
)

// Random picks uniformly among the legal moves. Used as a tournament baseline.
type Random struct {
	src dice.Source
}

func NewRandom(src dice.Source) *Random {
	return &Random{src: src}
}

func (r *Random) Kind() Kind { return AIKind }

func (r *Random) Decide(ctx context.Context, req Request) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return game.Move{}, err
	}
	moves := req.State.LegalMoves()
	if len(moves) == 0 {
		return game.PassMove(), nil
	}
	return moves[dice.Between(r.src, 0, len(moves)-1)], nil
}
