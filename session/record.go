package session

import (
	"context"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"stackrankdice/agent"
	"stackrankdice/game"
)

type Decision struct {
	Player int       `yaml:"player"`
	Move   game.Move `yaml:"move"`
}

// Record is a game history: the setup with its resolved seeds and every applied move,
// automatic ones included.
type Record struct {
	Setup     Setup          `yaml:"setup"`
	Decisions []Decision     `yaml:"decisions"`
	Stopped   bool           `yaml:"stopped"`
	FinalHash game.StateHash `yaml:"final_hash"`
}

func (r *Record) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("cannot save record: %w", err)
	}
	return nil
}

func LoadRecord(r io.Reader) (*Record, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("cannot load record: %w", err)
	}
	return &rec, nil
}

// script feeds recorded decisions back, in order, to whichever player is asked.
type script struct {
	decisions []Decision
	next      int
}

func (sc *script) Kind() agent.Kind { return agent.AIKind }

func (sc *script) Decide(ctx context.Context, req agent.Request) (game.Move, error) {
	if sc.next >= len(sc.decisions) {
		return game.Move{}, fmt.Errorf("replay ran out of decisions at turn %d", req.State.Turn.Number)
	}
	d := sc.decisions[sc.next]
	if d.Player != req.Player {
		return game.Move{}, fmt.Errorf("replay diverged: decision %d belongs to player %d, player %d is active", sc.next, d.Player, req.Player)
	}
	sc.next++
	return d.Move, nil
}

// Replay plays rec again and checks that it ends in the recorded state. Observers passed
// as options see the same updates as during the recorded game.
func Replay(ctx context.Context, rec *Record, options ...Option) (Result, error) {
	sc := &script{decisions: rec.Decisions}
	agents := make([]agent.Agent, rec.Setup.Board.Players)
	for i := range agents {
		agents[i] = sc
	}
	options = append([]Option{
		WithAutoPass(false),
		WithMaxRejections(math.MaxInt),
		WithMaxTurns(math.MaxInt),
	}, options...)

	s, err := Start(rec.Setup, agents, options...)
	if err != nil {
		return Result{}, fmt.Errorf("cannot replay: %w", err)
	}

	moves := 0
	for sc.next < len(sc.decisions) {
		u, err := s.Step(ctx)
		if err != nil {
			return s.result(moves), fmt.Errorf("cannot replay: %w", err)
		}
		if u.Rejected != nil {
			return s.result(moves), fmt.Errorf("replay diverged: decision %d rejected: %w", sc.next-1, u.Rejected)
		}
		moves++
	}
	if rec.Stopped && !s.IsOver() {
		s.Stop()
	}

	if got := s.State().Hash(); got != rec.FinalHash {
		return s.result(moves), fmt.Errorf("replay diverged: final state %x, recorded %x", got, rec.FinalHash)
	}
	return s.result(moves), nil
}
