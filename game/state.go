package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"
)

type Phase int

const (
	AwaitingAttackPhase Phase = iota
	ReinforcementPhase
	TurnEndingPhase
	GameOverPhase
)

func (p Phase) String() string {
	switch p {
	case AwaitingAttackPhase:
		return "awaiting-attack"
	case ReinforcementPhase:
		return "reinforcement"
	case TurnEndingPhase:
		return "turn-ending"
	case GameOverPhase:
		return "game-over"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Player struct {
	ID    int
	Alive bool
}

// Turn is the explicit turn/phase state: whose turn it is, which phase they are in, the
// turn counter and the reinforcement dice still to place.
type Turn struct {
	Player int
	Phase  Phase
	Number int
	Pool   int
}

// GameState represents the dynamic state of the game at any point. The board is static;
// owners and dice are indexed by region id. Only the engine mutates it.
type GameState struct {
	Board    *Board   // Reference to the static board
	Rules    Rules    // The set of game rules to apply
	Owners   []int    // Owner per region
	Dice     []int    // Dice count per region
	Players  []Player // All players, eliminated ones included
	Turn     Turn
	Attacked []bool // Regions that attacked during the current turn
	Winner   int    // Winning player, -1 while undecided or when stopped without one
}

// NewGameState checks the board generator's output contract and returns the initial state:
// player 0 to attack on turn 1.
func NewGameState(board *Board, rules Rules, numPlayers int, owners, dice []int) (*GameState, error) {
	if numPlayers < 2 {
		return nil, fmt.Errorf("need at least two players, got %d", numPlayers)
	}
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}
	n := board.NumRegions()
	if len(owners) != n || len(dice) != n {
		return nil, fmt.Errorf("setup covers %d owners and %d dice for %d regions", len(owners), len(dice), n)
	}

	gs := &GameState{
		Board:    board,
		Rules:    rules,
		Owners:   slices.Clone(owners),
		Dice:     slices.Clone(dice),
		Players:  make([]Player, numPlayers),
		Turn:     Turn{Player: 0, Phase: AwaitingAttackPhase, Number: 1},
		Attacked: make([]bool, n),
		Winner:   -1,
	}
	for i := range gs.Players {
		gs.Players[i] = Player{ID: i, Alive: true}
	}
	for id := range owners {
		if owners[id] < 0 || owners[id] >= numPlayers {
			return nil, fmt.Errorf("region %d has no valid owner (%d)", id, owners[id])
		}
	}
	for p := range gs.Players {
		if gs.RegionCount(p) == 0 {
			return nil, fmt.Errorf("player %d starts without regions", p)
		}
	}
	if err := gs.CheckInvariants(); err != nil {
		return nil, err
	}
	return gs, nil
}

func (gs GameState) Copy() *GameState {
	players := make([]Player, len(gs.Players))
	copy(players, gs.Players)

	return &GameState{
		Board:    gs.Board, // Board is immutable
		Rules:    gs.Rules, // Rules are immutable
		Owners:   slices.Clone(gs.Owners),
		Dice:     slices.Clone(gs.Dice),
		Players:  players,
		Turn:     gs.Turn,
		Attacked: slices.Clone(gs.Attacked),
		Winner:   gs.Winner,
	}
}

// CurrentPlayer returns the player whose turn it is.
func (gs *GameState) CurrentPlayer() int {
	return gs.Turn.Player
}

func (gs *GameState) IsOver() bool {
	return gs.Turn.Phase == GameOverPhase
}

// RegionCount returns how many regions player owns.
func (gs *GameState) RegionCount(player int) int {
	count := 0
	for _, owner := range gs.Owners {
		if owner == player {
			count++
		}
	}
	return count
}

// DiceCount returns the total dice on regions player owns.
func (gs *GameState) DiceCount(player int) int {
	total := 0
	for id, owner := range gs.Owners {
		if owner == player {
			total += gs.Dice[id]
		}
	}
	return total
}

// TotalDice returns the dice on the whole board.
func (gs *GameState) TotalDice() int {
	total := 0
	for _, d := range gs.Dice {
		total += d
	}
	return total
}

// OwnedRegions returns player's regions in id order.
func (gs *GameState) OwnedRegions(player int) []int {
	var regions []int
	for id, owner := range gs.Owners {
		if owner == player {
			regions = append(regions, id)
		}
	}
	return regions
}

// ConnectedRegions returns player's contiguous clusters, largest first.
func (gs *GameState) ConnectedRegions(player int) [][]int {
	return gs.Board.ConnectedComponents(gs.Owners, player)
}

// LargestCluster returns the size of player's largest contiguous cluster.
func (gs *GameState) LargestCluster(player int) int {
	clusters := gs.ConnectedRegions(player)
	if len(clusters) == 0 {
		return 0
	}
	return len(clusters[0])
}

// PlayerStats is a per-player summary derived from the regions.
type PlayerStats struct {
	Player         int
	Alive          bool
	Regions        int
	Dice           int
	LargestCluster int
}

// Stats summarizes every player, eliminated ones included.
func (gs *GameState) Stats() []PlayerStats {
	stats := make([]PlayerStats, len(gs.Players))
	for i, p := range gs.Players {
		stats[i] = PlayerStats{
			Player:         p.ID,
			Alive:          p.Alive,
			Regions:        gs.RegionCount(p.ID),
			Dice:           gs.DiceCount(p.ID),
			LargestCluster: gs.LargestCluster(p.ID),
		}
	}
	return stats
}

// AlivePlayers returns the ids of players not yet eliminated.
func (gs *GameState) AlivePlayers() []int {
	var alive []int
	for _, p := range gs.Players {
		if p.Alive {
			alive = append(alive, p.ID)
		}
	}
	return alive
}

// NextAlivePlayer returns the first alive player after from, wrapping around. It returns
// from itself when nobody else is alive.
func (gs *GameState) NextAlivePlayer(from int) int {
	n := len(gs.Players)
	for step := 1; step <= n; step++ {
		candidate := (from + step) % n
		if gs.Players[candidate].Alive {
			return candidate
		}
	}
	return from
}

// ValidateAttack checks an attack declaration by player against the current state.
func (gs *GameState) ValidateAttack(player int, attack Attack) error {
	if err := gs.ValidatePhase(player, AwaitingAttackPhase); err != nil {
		return err
	}
	if !gs.Board.Valid(attack.From) || !gs.Board.Valid(attack.To) {
		return reject(ReasonUnknownRegion, "regions %d and %d must exist", attack.From, attack.To)
	}
	if gs.Owners[attack.From] != player {
		return reject(ReasonNotOwner, "region %d is not owned by player %d", attack.From, player)
	}
	if gs.Owners[attack.To] == player {
		return reject(ReasonOwnTarget, "target region %d is owned by the attacker", attack.To)
	}
	if !gs.Board.IsAdjacent(attack.From, attack.To) {
		return reject(ReasonNotAdjacent, "regions %d and %d are not adjacent", attack.From, attack.To)
	}
	if gs.Dice[attack.From] < 2 {
		return reject(ReasonNotEnoughDice, "region %d has %d dice, at least 2 are needed", attack.From, gs.Dice[attack.From])
	}
	if gs.Rules.SingleAttackPerRegion() && gs.Attacked[attack.From] {
		return reject(ReasonAlreadyAttacked, "region %d already attacked this turn", attack.From)
	}
	return nil
}

// ValidateReinforcement checks placing one reinforcement die on region.
func (gs *GameState) ValidateReinforcement(player, region int) error {
	if err := gs.ValidatePhase(player, ReinforcementPhase); err != nil {
		return err
	}
	if !gs.Board.Valid(region) {
		return reject(ReasonUnknownRegion, "region %d does not exist", region)
	}
	if gs.Owners[region] != player {
		return reject(ReasonNotOwner, "region %d is not owned by player %d", region, player)
	}
	if gs.Dice[region] >= gs.Rules.MaxDice() {
		return reject(ReasonRegionFull, "region %d already holds %d dice", region, gs.Dice[region])
	}
	return nil
}

// ValidatePhase checks that player may act now and that the game is in phase.
func (gs *GameState) ValidatePhase(player int, phase Phase) error {
	if gs.IsOver() {
		return reject(ReasonGameOver, "game is over - no moves allowed")
	}
	if player != gs.Turn.Player {
		return reject(ReasonWrongPlayer, "player %d acted during player %d's turn", player, gs.Turn.Player)
	}
	if gs.Turn.Phase != phase {
		return reject(ReasonWrongPhase, "action needs phase %s, game is in %s", phase, gs.Turn.Phase)
	}
	return nil
}

// LegalMoves returns all legal moves for the current player, in a stable order.
func (gs *GameState) LegalMoves() []Move {
	switch gs.Turn.Phase {
	case AwaitingAttackPhase:
		return append(gs.attackMoves(), PassMove())
	case ReinforcementPhase:
		return append(gs.reinforcementMoves(), PassMove())
	default:
		return nil
	}
}

func (gs *GameState) attackMoves() []Move {
	var moves []Move
	player := gs.Turn.Player
	for regionID, owner := range gs.Owners {
		if owner != player || gs.Dice[regionID] < 2 {
			continue
		}
		if gs.Rules.SingleAttackPerRegion() && gs.Attacked[regionID] {
			continue
		}
		for _, adjID := range gs.Board.Regions[regionID].Adjacent {
			if gs.Owners[adjID] != player {
				moves = append(moves, AttackMove(regionID, adjID))
			}
		}
	}
	return moves
}

// HasAttack reports whether the current player can attack at all.
func (gs *GameState) HasAttack() bool {
	return gs.Turn.Phase == AwaitingAttackPhase && len(gs.attackMoves()) > 0
}

func (gs *GameState) reinforcementMoves() []Move {
	var moves []Move
	for _, regionID := range gs.OwnedRegions(gs.Turn.Player) {
		if gs.Dice[regionID] < gs.Rules.MaxDice() {
			moves = append(moves, ReinforceMove(regionID))
		}
	}
	return moves
}

// CheckInvariants verifies the state. A failure means the core has a bug.
func (gs *GameState) CheckInvariants() error {
	maxDice := gs.Rules.MaxDice()
	for id, d := range gs.Dice {
		if d < 1 || d > maxDice {
			return &InvariantViolation{Detail: fmt.Sprintf("region %d holds %d dice, allowed 1..%d", id, d, maxDice)}
		}
	}
	for id, owner := range gs.Owners {
		if owner < 0 || owner >= len(gs.Players) {
			return &InvariantViolation{Detail: fmt.Sprintf("region %d owned by unknown player %d", id, owner)}
		}
	}
	for _, r := range gs.Board.Regions {
		for _, adjID := range r.Adjacent {
			if !gs.Board.IsAdjacent(adjID, r.ID) {
				return &InvariantViolation{Detail: fmt.Sprintf("adjacency %d-%d is not symmetric", r.ID, adjID)}
			}
		}
	}
	if gs.Turn.Player < 0 || gs.Turn.Player >= len(gs.Players) {
		return &InvariantViolation{Detail: fmt.Sprintf("current player %d out of range", gs.Turn.Player)}
	}
	if !gs.IsOver() && !gs.Players[gs.Turn.Player].Alive {
		return &InvariantViolation{Detail: fmt.Sprintf("current player %d is eliminated", gs.Turn.Player)}
	}
	for _, p := range gs.Players {
		if !p.Alive && gs.RegionCount(p.ID) > 0 {
			return &InvariantViolation{Detail: fmt.Sprintf("eliminated player %d still owns regions", p.ID)}
		}
	}
	if gs.Turn.Pool < 0 || (gs.Turn.Pool > 0 && gs.Turn.Phase != ReinforcementPhase) {
		return &InvariantViolation{Detail: fmt.Sprintf("reinforcement pool %d during %s", gs.Turn.Pool, gs.Turn.Phase)}
	}
	return nil
}

type StateHash uint64

func (gs *GameState) Hash() StateHash {
	hasher := fnv.New64a()

	write := func(v int) {
		binary.Write(hasher, binary.LittleEndian, int64(v))
	}

	// Turn
	write(gs.Turn.Player)
	write(int(gs.Turn.Phase))
	write(gs.Turn.Number)
	write(gs.Turn.Pool)
	write(gs.Winner)

	// Regions
	for id := range gs.Owners {
		write(gs.Owners[id])
		write(gs.Dice[id])
		if gs.Attacked[id] {
			write(1)
		} else {
			write(0)
		}
	}

	// Players
	for _, p := range gs.Players {
		if p.Alive {
			write(1)
		} else {
			write(0)
		}
	}

	return StateHash(hasher.Sum64())
}
