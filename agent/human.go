package agent

import (
	"context"
	"fmt"

	"stackrankdice/game"
)

// Input supplies moves typed, clicked or scripted by a person. Next may block until the
// person answers or ctx is done.
type Input interface {
	Next(ctx context.Context, req Request) (game.Move, error)
}

// Notifier is implemented by inputs that can show rejection messages.
type Notifier interface {
	Notify(msg string)
}

type Human struct {
	input Input
}

func NewHuman(input Input) *Human {
	return &Human{input: input}
}

func (h *Human) Kind() Kind { return HumanKind }

func (h *Human) Decide(ctx context.Context, req Request) (game.Move, error) {
	move, err := h.input.Next(ctx, req)
	if err != nil {
		return game.Move{}, fmt.Errorf("human input: %w", err)
	}
	return move, nil
}

func (h *Human) Rejected(move game.Move, err error) {
	if n, ok := h.input.(Notifier); ok {
		n.Notify(fmt.Sprintf("%s refused: %v", move, err))
	}
}
