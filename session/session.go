// Package session runs a game: it owns the state and the turn engine, asks the active agent
// for decisions and forwards what happened to observers.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stackrankdice/agent"
	"stackrankdice/boardgen"
	"stackrankdice/dice"
	"stackrankdice/engine"
	"stackrankdice/game"
	"stackrankdice/meta"
)

// ErrFinished is returned by Step once the game is over.
var ErrFinished = errors.New("game is over")

// Setup is everything needed to recreate a game apart from the decisions.
type Setup struct {
	Board boardgen.Config    `yaml:"board"`
	Rules game.StandardRules `yaml:"rules"`
	Seeds dice.Seeds         `yaml:"seeds"`
}

type Result struct {
	Winner  int // -1 when stopped without a winner
	Turns   int
	Moves   int
	Stopped bool
}

type Session struct {
	ID            uuid.UUID
	engine        *engine.TurnEngine
	agents        []agent.Agent
	log           zerolog.Logger
	observers     []Observer
	autoPass      bool
	maxRejections int
	maxTurns      int
	rejections    int
	stats         []game.PlayerStats
	record        *Record
}

// Start generates a board from setup and starts a session on it. Zero seeds are resolved
// first, so the record always carries the seeds actually played.
func Start(setup Setup, agents []agent.Agent, options ...Option) (*Session, error) {
	if err := setup.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("cannot start session: %w", err)
	}
	setup.Seeds = setup.Seeds.Resolve()
	setup.Board.Seed = setup.Seeds.World
	setup.Board.MaxDice = setup.Rules.MaxDice()
	if setup.Board.Players != len(agents) {
		return nil, fmt.Errorf("cannot start session: board for %d players, %d agents", setup.Board.Players, len(agents))
	}

	res, err := boardgen.Generate(setup.Board)
	if err != nil {
		return nil, fmt.Errorf("cannot start session: %w", err)
	}
	rules := setup.Rules
	gs, err := res.NewGameState(&rules)
	if err != nil {
		return nil, fmt.Errorf("cannot start session: %w", err)
	}

	s, err := New(gs, agents, dice.NewSeeded(setup.Seeds.Env), options...)
	if err != nil {
		return nil, err
	}
	s.record = &Record{Setup: setup}
	return s, nil
}

// New runs a session on an existing state. The session takes ownership of gs; src must be
// the only source of die rolls for the game.
func New(gs *game.GameState, agents []agent.Agent, src dice.Source, options ...Option) (*Session, error) {
	if len(agents) != len(gs.Players) {
		return nil, fmt.Errorf("cannot start session: %d players, %d agents", len(gs.Players), len(agents))
	}
	id := uuid.New()
	s := &Session{
		ID:            id,
		engine:        engine.New(gs, src),
		agents:        agents,
		log:           log.Logger.With().Str("session", id.String()).Logger(),
		autoPass:      true,
		maxRejections: meta.MAX_REJECTIONS,
		maxTurns:      meta.MAX_TURNS,
		stats:         gs.Stats(),
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *Session) State() *game.GameState {
	return s.engine.State()
}

// Stats returns the per-player summary as of the start of the current turn.
func (s *Session) Stats() []game.PlayerStats {
	return s.stats
}

// Record returns the decisions played so far, or nil for sessions built with New.
func (s *Session) Record() *Record {
	if s.record == nil {
		return nil
	}
	rec := *s.record
	rec.Decisions = append([]Decision(nil), s.record.Decisions...)
	return &rec
}

func (s *Session) IsOver() bool {
	return s.engine.Phase() == game.GameOverPhase
}

// Run steps until the game ends, ctx is done or the engine reports a broken invariant.
func (s *Session) Run(ctx context.Context) (Result, error) {
	moves := 0
	for !s.IsOver() {
		if err := ctx.Err(); err != nil {
			return s.result(moves), err
		}
		u, err := s.Step(ctx)
		if err != nil {
			return s.result(moves), err
		}
		if u.Rejected == nil && u.Player >= 0 {
			moves++
		}
	}
	return s.result(moves), nil
}

func (s *Session) result(moves int) Result {
	gs := s.engine.State()
	return Result{
		Winner:  gs.Winner,
		Turns:   gs.Turn.Number,
		Moves:   moves,
		Stopped: gs.IsOver() && gs.Winner < 0,
	}
}

// Stop ends the game without a winner.
func (s *Session) Stop() Update {
	events := s.engine.Stop()
	if s.record != nil {
		s.record.Stopped = true
	}
	return s.publish(game.PassMove(), -1, true, events)
}

// Step asks the active agent for one move and applies it. A rejected move comes back with
// Update.Rejected set and the agent is asked again on the next Step. Errors are fatal: a
// failing agent or a broken invariant.
func (s *Session) Step(ctx context.Context) (Update, error) {
	if s.IsOver() {
		return Update{}, ErrFinished
	}
	gs := s.engine.State()

	if gs.Turn.Number > s.maxTurns {
		s.log.Info().Msgf("stopping after %d turns without a winner", s.maxTurns)
		return s.Stop(), nil
	}

	player := gs.CurrentPlayer()
	if s.autoPass && gs.Turn.Phase == game.AwaitingAttackPhase && !gs.HasAttack() {
		return s.apply(player, game.PassMove(), true)
	}

	a := s.agents[player]
	move, err := a.Decide(ctx, agent.NewRequest(gs))
	if err != nil {
		return Update{}, fmt.Errorf("player %d: %w", player, err)
	}

	u, err := s.apply(player, move, false)
	if err == nil || !errors.Is(err, game.ErrInvalidAction) {
		return u, err
	}

	s.rejections++
	s.log.Warn().Msgf("player %d: %s rejected (%d/%d): %v", player, move, s.rejections, s.maxRejections, err)
	if r, ok := a.(agent.Rejecter); ok {
		r.Rejected(move, err)
	}
	if s.rejections < s.maxRejections {
		return Update{Move: move, Player: player, Rejected: err}, nil
	}

	fallback := gs.LegalMoves()[0]
	s.log.Warn().Msgf("player %d: playing %s after %d rejections", player, fallback, s.rejections)
	return s.apply(player, fallback, true)
}

func (s *Session) apply(player int, move game.Move, auto bool) (Update, error) {
	events, err := s.engine.Apply(player, move)
	if err != nil {
		if errors.Is(err, game.ErrInvariantViolation) {
			s.log.Error().Err(err).Msgf("player %d: %s broke the game state", player, move)
			return Update{}, fmt.Errorf("session %s: %w", s.ID, err)
		}
		return Update{}, err
	}
	s.rejections = 0
	if s.record != nil {
		s.record.Decisions = append(s.record.Decisions, Decision{Player: player, Move: move})
	}
	return s.publish(move, player, auto, events), nil
}

func (s *Session) publish(move game.Move, player int, auto bool, events []engine.Event) Update {
	state := s.engine.State()
	u := Update{
		Move:   move,
		Player: player,
		Auto:   auto,
		Events: events,
		State:  state,
		Hash:   state.Hash(),
	}
	if s.record != nil {
		s.record.FinalHash = u.Hash
	}
	s.logEvents(u)
	for _, o := range s.observers {
		o.Observe(u)
	}
	return u
}

func (s *Session) logEvents(u Update) {
	s.log.Debug().Msgf("player %d played %s", u.Player, u.Move)
	for _, ev := range u.Events {
		switch e := ev.(type) {
		case engine.AttackResolved:
			s.log.Debug().Msg(e.String())
		case engine.TurnAdvanced:
			s.stats = u.State.Stats()
			s.log.Debug().Msgf("turn %d: player %d", e.Turn, e.Player)
		case engine.PlayerEliminated:
			s.log.Info().Msgf("player %d has been eliminated", e.Player)
		case engine.GameOver:
			s.stats = u.State.Stats()
			if e.Winner >= 0 {
				s.log.Info().Msgf("player %d wins after %d turns", e.Winner, u.State.Turn.Number)
			} else {
				s.log.Info().Msg("game stopped without a winner")
			}
		}
	}
}
