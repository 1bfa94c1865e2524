package agent

import (
	"context"

	"stackrankdice/game"
)

// Profile is the serializable AI configuration.
type Profile struct {
	Aggressiveness    float64 `yaml:"aggressiveness" env:"AGGRESSIVENESS"`
	TerritoryBias     float64 `yaml:"territory_bias" env:"TERRITORY_BIAS"`
	Caution           float64 `yaml:"caution" env:"CAUTION"`
	MinWinProbability float64 `yaml:"min_win_probability" env:"MIN_WIN_PROBABILITY"`
}

func DefaultProfile() Profile {
	return Profile{
		Aggressiveness:    1.0,
		TerritoryBias:     0.5,
		Caution:           0.25,
		MinWinProbability: 0.5,
	}
}

type Option func(ai *AI)

func WithAggressiveness(v float64) Option {
	return func(ai *AI) {
		if v >= 0 {
			ai.profile.Aggressiveness = v
		}
	}
}

func WithTerritoryBias(v float64) Option {
	return func(ai *AI) {
		if v >= 0 {
			ai.profile.TerritoryBias = v
		}
	}
}

func WithCaution(v float64) Option {
	return func(ai *AI) {
		if v >= 0 {
			ai.profile.Caution = v
		}
	}
}

func WithMinWinProbability(p float64) Option {
	return func(ai *AI) {
		if p >= 0 && p <= 1 {
			ai.profile.MinWinProbability = p
		}
	}
}

// WithProfile replaces every weight at once.
func WithProfile(p Profile) Option {
	return func(ai *AI) {
		ai.profile = p
	}
}

// WithEvaluation breaks ties between equally threatened reinforcement targets by the
// position score after placing the die.
func WithEvaluation(evaluate game.Evaluate) Option {
	return func(ai *AI) {
		ai.evaluate = evaluate
	}
}

// AI is a synchronous one-ply heuristic player.
type AI struct {
	profile  Profile
	evaluate game.Evaluate
}

func NewAI(options ...Option) *AI {
	ai := &AI{profile: DefaultProfile()}
	for _, option := range options {
		option(ai)
	}
	return ai
}

func (ai *AI) Kind() Kind { return AIKind }

func (ai *AI) Profile() Profile { return ai.profile }

func (ai *AI) Decide(ctx context.Context, req Request) (game.Move, error) {
	if err := ctx.Err(); err != nil {
		return game.Move{}, err
	}
	switch req.Phase {
	case game.AwaitingAttackPhase:
		return ai.chooseAttack(req.State), nil
	case game.ReinforcementPhase:
		return ai.chooseReinforcement(req.State), nil
	default:
		return game.PassMove(), nil
	}
}

// ScoreAttack rates an attack for player. Higher is better.
func (ai *AI) ScoreAttack(gs *game.GameState, attack game.Attack) (score, winProbability float64) {
	player := gs.Owners[attack.From]
	attackerDice := gs.Dice[attack.From]
	p := WinProbability(attackerDice, gs.Dice[attack.To])

	before := gs.LargestCluster(player)
	conquered := gs.Copy()
	conquered.Owners[attack.To] = player
	growth := float64(conquered.LargestCluster(player) - before)
	regions := float64(gs.Board.NumRegions())

	maxDice := float64(gs.Rules.MaxDice())
	exposure := float64(attackerDice-1) / maxDice

	score = ai.profile.Aggressiveness*p +
		ai.profile.TerritoryBias*growth/regions -
		ai.profile.Caution*(1-p)*exposure
	return score, p
}

func (ai *AI) chooseAttack(gs *game.GameState) game.Move {
	best := game.PassMove()
	bestScore := 0.0
	found := false
	// Legal attacks come ordered by (from, to), so keeping the first maximum breaks ties
	// toward the lowest pair.
	for _, move := range gs.LegalMoves() {
		if move.Type != game.AttackAction {
			continue
		}
		score, p := ai.ScoreAttack(gs, move.Attack())
		if p < ai.profile.MinWinProbability {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = move, score, true
		}
	}
	return best
}

// Threat is the largest enemy stack next to region minus the region's own dice. ok is
// false when region has no enemy neighbour.
func Threat(gs *game.GameState, region int) (threat int, ok bool) {
	owner := gs.Owners[region]
	strongest := 0
	for _, adj := range gs.Board.Neighbors(region) {
		if gs.Owners[adj] != owner {
			strongest = max(strongest, gs.Dice[adj])
			ok = true
		}
	}
	return strongest - gs.Dice[region], ok
}

func (ai *AI) chooseReinforcement(gs *game.GameState) game.Move {
	var border, inland []int
	for _, move := range gs.LegalMoves() {
		if move.Type != game.ReinforceAction {
			continue
		}
		if _, ok := Threat(gs, move.To); ok {
			border = append(border, move.To)
		} else {
			inland = append(inland, move.To)
		}
	}

	if len(border) > 0 {
		return game.ReinforceMove(ai.mostThreatened(gs, border))
	}
	if len(inland) > 0 {
		return game.ReinforceMove(inland[0])
	}
	return game.PassMove()
}

func (ai *AI) mostThreatened(gs *game.GameState, candidates []int) int {
	player := gs.CurrentPlayer()
	best := candidates[0]
	bestThreat, _ := Threat(gs, best)
	bestEval := ai.evaluateWith(gs, player, best)
	for _, region := range candidates[1:] {
		threat, _ := Threat(gs, region)
		switch {
		case threat > bestThreat:
		case threat == bestThreat && ai.evaluate != nil:
			eval := ai.evaluateWith(gs, player, region)
			if eval <= bestEval {
				continue
			}
		default:
			continue
		}
		best, bestThreat = region, threat
		bestEval = ai.evaluateWith(gs, player, region)
	}
	return best
}

func (ai *AI) evaluateWith(gs *game.GameState, player, region int) float64 {
	if ai.evaluate == nil {
		return 0
	}
	next := gs.Copy()
	next.Dice[region]++
	return ai.evaluate(next, player)
}
