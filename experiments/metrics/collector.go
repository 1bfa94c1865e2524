package metrics

import (
	"time"

	"stackrankdice/agent"
	"stackrankdice/engine"
	"stackrankdice/game"
	"stackrankdice/session"
)

// AgentConfig identifies one contestant of a tournament.
type AgentConfig struct {
	ID      int
	Name    string
	Random  bool // Uniformly random baseline, Profile unused
	Profile agent.Profile
}

type MoveMetric struct {
	Step      int
	Turn      int
	Player    int // Player ID
	Action    string
	Auto      bool
	Conquered bool
}

type GameMetric struct {
	StartingPlayer    int // Player ID
	Winner            int // Player ID, -1 when stopped
	Stopped           bool
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
	TotalMoves        int
	Turns             int
	Attacks           int
	Conquests         int
	Eliminations      int
	FinalResources    float64 // Winner's resource score in the final position
	FinalConnectivity float64 // Winner's connectivity score in the final position
}

// Collector gathers metrics about one game by observing its session.
type Collector interface {
	session.Observer
	Start(startingPlayer int)
	Complete() (GameMetric, []MoveMetric)
}

type collector struct {
	game  GameMetric
	moves []MoveMetric
	last  *game.GameState
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(startingPlayer int) {
	m.game = GameMetric{StartingPlayer: startingPlayer, Winner: -1, StartTime: time.Now()}
	m.moves = nil
	m.last = nil
}

func (m *collector) Observe(u session.Update) {
	m.last = u.State
	if u.Player < 0 {
		return
	}
	move := MoveMetric{
		Step:   len(m.moves) + 1,
		Turn:   u.State.Turn.Number,
		Player: u.Player,
		Action: u.Move.Type.String(),
		Auto:   u.Auto,
	}
	for _, ev := range u.Events {
		switch e := ev.(type) {
		case engine.AttackResolved:
			m.game.Attacks++
			if e.Outcome.Conquered() {
				m.game.Conquests++
				move.Conquered = true
			}
		case engine.PlayerEliminated:
			m.game.Eliminations++
		}
	}
	m.moves = append(m.moves, move)
}

func (m *collector) Complete() (GameMetric, []MoveMetric) {
	m.game.EndTime = time.Now()
	m.game.Duration = m.game.EndTime.Sub(m.game.StartTime)
	m.game.TotalMoves = len(m.moves)
	if m.last != nil {
		m.game.Turns = m.last.Turn.Number
		m.game.Winner = m.last.Winner
		m.game.Stopped = m.last.IsOver() && m.last.Winner < 0
		if m.game.Winner >= 0 {
			m.game.FinalResources = game.EvaluateResources(m.last, m.game.Winner)
			m.game.FinalConnectivity = game.EvaluateConnectivity(m.last, m.game.Winner)
		}
	}
	return m.game, m.moves
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(startingPlayer int)             {}
func (m *dummyCollector) Observe(u session.Update)             {}
func (m *dummyCollector) Complete() (GameMetric, []MoveMetric) { return GameMetric{Winner: -1}, nil }
