package session

import (
	"github.com/rs/zerolog"

	"stackrankdice/engine"
	"stackrankdice/game"
)

// Update is what observers see after every accepted move. Step also returns it for
// rejected moves, with Rejected set and nothing else applied.
type Update struct {
	Move     game.Move
	Player   int  // -1 when the session stopped the game
	Auto     bool // Move was taken by the session, not the agent
	Rejected error
	Events   []engine.Event
	State    *game.GameState // Copy taken after the move
	Hash     game.StateHash
}

type Observer interface {
	Observe(u Update)
}

type ObserverFunc func(u Update)

func (f ObserverFunc) Observe(u Update) { f(u) }

type Option func(s *Session)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithAutoPass ends the attack phase without asking the agent when it has no legal attack.
func WithAutoPass(enabled bool) Option {
	return func(s *Session) {
		s.autoPass = enabled
	}
}

// WithMaxRejections sets how many consecutive rejected moves an agent may propose before
// the first legal move is played for it.
func WithMaxRejections(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRejections = n
		}
	}
}

// WithMaxTurns stops the game without a winner once the turn counter passes n.
func WithMaxTurns(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}
