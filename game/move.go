package game

import "fmt"

// ActionType represents the type of action a player can perform.
type ActionType int

const (
	AttackAction ActionType = iota
	ReinforceAction
	PassAction // Ends the attack phase, or forfeits the rest of the reinforcement pool
)

func (a ActionType) String() string {
	switch a {
	case AttackAction:
		return "attack"
	case ReinforceAction:
		return "reinforce"
	case PassAction:
		return "pass"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Attack is an attack declaration from one region against an adjacent enemy region.
type Attack struct {
	From int
	To   int
}

// Move is a single decision taken by a player. Reinforcements target To.
type Move struct {
	Type ActionType
	From int
	To   int
}

func AttackMove(from, to int) Move {
	return Move{Type: AttackAction, From: from, To: to}
}

func ReinforceMove(region int) Move {
	return Move{Type: ReinforceAction, From: -1, To: region}
}

func PassMove() Move {
	return Move{Type: PassAction, From: -1, To: -1}
}

func (m Move) Attack() Attack {
	return Attack{From: m.From, To: m.To}
}

func (m Move) IsStochastic() bool {
	return m.Type == AttackAction
}

func (m Move) String() string {
	switch m.Type {
	case AttackAction:
		return fmt.Sprintf("attack %d->%d", m.From, m.To)
	case ReinforceAction:
		return fmt.Sprintf("reinforce %d", m.To)
	default:
		return m.Type.String()
	}
}
