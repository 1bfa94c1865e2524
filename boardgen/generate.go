// Package boardgen grows random hex boards out of per-player patches.
//
// Patches are placed round-robin: every player gets one patch, then every player gets a
// second one, and so on. Apart from the very first, a patch is only kept when it touches
// the board built so far, so the resulting adjacency graph is always connected.
package boardgen

import (
	"fmt"
	"math/rand/v2"

	opensimplex "github.com/ojrac/opensimplex-go"

	"stackrankdice/game"
	"stackrankdice/meta"
	"stackrankdice/utils"
)

const (
	DefaultSize             = 20
	DefaultPatchesPerPlayer = 16
	DefaultMaxAttempts      = 100_000

	// diceBudgetPerPatch is the average number of starting dice a player may spread per region.
	diceBudgetPerPatch = 4
	maxStartingDice    = 3
	waterFrequency     = 0.15
)

type Config struct {
	Players          int     `yaml:"players" env:"PLAYERS"`
	Size             int     `yaml:"size" env:"SIZE"`                             // Start cells are drawn from a Size x Size axial square
	PatchesPerPlayer int     `yaml:"patches_per_player" env:"PATCHES_PER_PLAYER"` // Regions per player
	WaterLevel       float64 `yaml:"water_level" env:"WATER_LEVEL"`               // Noise threshold below which cells are water, 0 disables
	MaxDice          int     `yaml:"-"`                                           // Cap on starting dice, usually Rules.MaxDice()
	MaxAttempts      int     `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	Seed             uint64  `yaml:"-"` // World seed
}

func DefaultConfig() Config {
	return Config{
		Players:          2,
		Size:             DefaultSize,
		PatchesPerPlayer: DefaultPatchesPerPlayer,
		MaxDice:          meta.MAX_DICE,
		MaxAttempts:      DefaultMaxAttempts,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Players < 2 || c.Players > 8:
		return fmt.Errorf("players must be within 2..8, got %d", c.Players)
	case c.Size < 4:
		return fmt.Errorf("board size must be at least 4, got %d", c.Size)
	case c.PatchesPerPlayer < 1:
		return fmt.Errorf("need at least one patch per player, got %d", c.PatchesPerPlayer)
	case c.WaterLevel < 0 || c.WaterLevel >= 0.9:
		return fmt.Errorf("water level must be within [0, 0.9), got %v", c.WaterLevel)
	case c.MaxDice < 1:
		return fmt.Errorf("max dice must be positive, got %d", c.MaxDice)
	case c.MaxAttempts < 1:
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

// PatchSize is how many cells a patch tries to add to its start cell. Roughly half of the
// square ends up covered.
func (c Config) PatchSize() int {
	return (c.Size * c.Size) / (c.PatchesPerPlayer * c.Players * 2)
}

// Result is a generated setup, ready for game.NewGameState.
type Result struct {
	Board   *game.Board
	Owners  []int
	Dice    []int
	Players int
	Seed    uint64
}

// NewGameState starts a game on the generated setup.
func (r *Result) NewGameState(rules game.Rules) (*game.GameState, error) {
	return game.NewGameState(r.Board, rules, r.Players, r.Owners, r.Dice)
}

type generator struct {
	cfg      Config
	rng      *rand.Rand
	water    opensimplex.Noise
	occupied map[game.HexCoord]bool
	patches  [][]game.HexCoord
	owners   []int
}

// Generate builds a board for cfg. The same config and seed always produce the same board.
func Generate(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cannot generate board: %w", err)
	}
	g := &generator{
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5851f42d4c957f2d)),
		occupied: make(map[game.HexCoord]bool),
	}
	g.water = newWaterMask(cfg)

	for patch := 0; patch < cfg.PatchesPerPlayer; patch++ {
		for player := 0; player < cfg.Players; player++ {
			if err := g.placePatch(player); err != nil {
				return nil, fmt.Errorf("cannot generate board: patch %d of player %d: %w", patch, player, err)
			}
		}
	}

	board, err := game.NewBoard(g.patches)
	if err != nil {
		return nil, fmt.Errorf("cannot generate board: %w", err)
	}
	return &Result{
		Board:   board,
		Owners:  g.owners,
		Dice:    g.allocateDice(),
		Players: cfg.Players,
		Seed:    cfg.Seed,
	}, nil
}

func (g *generator) placePatch(player int) error {
	half := g.cfg.Size/2 - 1
	for range g.cfg.MaxAttempts {
		start := game.HexCoord{
			Q: g.rng.IntN(2*half) - half,
			R: g.rng.IntN(2*half) - half,
		}
		if !g.free(start, nil) {
			continue
		}

		patch := g.grow(start)
		if len(g.patches) > 0 && !g.touchesBoard(patch) {
			continue
		}
		for _, c := range patch {
			g.occupied[c] = true
		}
		g.patches = append(g.patches, patch)
		g.owners = append(g.owners, player)
		return nil
	}
	return fmt.Errorf("no room after %d attempts", g.cfg.MaxAttempts)
}

// grow expands a patch from start one free neighbour at a time, visiting the patch's
// cells in random order so it does not drift in one direction.
func (g *generator) grow(start game.HexCoord) []game.HexCoord {
	patch := []game.HexCoord{start}
	taken := map[game.HexCoord]bool{start: true}

	for range g.cfg.PatchSize() {
		order := g.rng.Perm(len(patch))
		var candidates []game.HexCoord
		for _, i := range order {
			for _, n := range patch[i].Neighbors() {
				if g.free(n, taken) {
					candidates = append(candidates, n)
				}
			}
			if len(candidates) > 0 {
				break
			}
		}
		if len(candidates) == 0 {
			break
		}
		next := candidates[g.rng.IntN(len(candidates))]
		patch = append(patch, next)
		taken[next] = true
	}
	return patch
}

func (g *generator) free(c game.HexCoord, taken map[game.HexCoord]bool) bool {
	return !g.occupied[c] && !taken[c] && !g.isWater(c)
}

func newWaterMask(cfg Config) opensimplex.Noise {
	if cfg.WaterLevel <= 0 {
		return nil
	}
	return opensimplex.NewNormalized(int64(cfg.Seed))
}

func (g *generator) isWater(c game.HexCoord) bool {
	if g.water == nil {
		return false
	}
	return g.water.Eval2(float64(c.Q)*waterFrequency, float64(c.R)*waterFrequency) < g.cfg.WaterLevel
}

func (g *generator) touchesBoard(patch []game.HexCoord) bool {
	for _, c := range patch {
		for _, n := range c.Neighbors() {
			if g.occupied[n] {
				return true
			}
		}
	}
	return false
}

// allocateDice gives every region 1..3 dice out of a per-player budget.
func (g *generator) allocateDice() []int {
	budget := make([]int, g.cfg.Players)
	for p := range budget {
		budget[p] = g.cfg.PatchesPerPlayer * diceBudgetPerPatch
	}

	dice := make([]int, len(g.owners))
	for id, owner := range g.owners {
		hi := utils.Clamp(budget[owner]-1, 1, maxStartingDice)
		n := utils.Clamp(1+g.rng.IntN(hi), 1, g.cfg.MaxDice)
		dice[id] = n
		budget[owner] -= n
	}
	return dice
}
