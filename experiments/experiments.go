// Package experiments runs AI-vs-AI tournaments and stores their metrics as CSV.
package experiments

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stackrankdice/agent"
	"stackrankdice/dice"
	"stackrankdice/experiments/metrics"
	"stackrankdice/game"
	"stackrankdice/session"
)

const NumGames = 30 // Per match up

// Tournament plays every match up Games times. Seats rotate between games so each
// contestant starts equally often.
type Tournament struct {
	Name     string
	Setup    session.Setup // Board.Players is taken from the match up size
	Games    int
	Workers  int
	Configs  []metrics.AgentConfig
	MatchUps [][]metrics.AgentConfig
	OutDir   string // CSV files are skipped when empty
	Options  []session.Option
}

type Report struct {
	ID       uuid.UUID
	Name     string
	Games    []metrics.GameRecord
	Moves    []metrics.MoveRecord
	Wins     map[int]int // AgentConfig.ID -> games won
	Stopped  int
	Duration time.Duration
	Dir      string
}

// Throughput returns finished games and applied moves per second.
func (r *Report) Throughput() (games, moves float64) {
	secs := r.Duration.Seconds()
	if secs == 0 {
		return 0, 0
	}
	return float64(len(r.Games)) / secs, float64(len(r.Moves)) / secs
}

type task struct {
	id    int
	seats []metrics.AgentConfig
	seeds dice.Seeds
}

type outcome struct {
	record metrics.GameRecord
	moves  []metrics.MoveRecord
	err    error
}

func Run(ctx context.Context, t Tournament) (*Report, error) {
	if t.Games <= 0 {
		t.Games = NumGames
	}
	if t.Workers <= 0 {
		t.Workers = 1
	}
	report := &Report{ID: uuid.New(), Name: t.Name, Wins: make(map[int]int)}
	logger := log.With().Str("tournament", report.ID.String()).Logger()
	logger.Info().Msgf("starting %s experiment...", t.Name)
	start := time.Now()

	tasks := make(chan task)
	results := make(chan outcome)
	var wg sync.WaitGroup
	for i := 0; i < t.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range tasks {
				results <- runGame(ctx, t, tk, logger)
			}
		}()
	}

	go func() {
		defer close(tasks)
		id := 0
		for mi, matchup := range t.MatchUps {
			for g := 0; g < t.Games; g++ {
				id++
				tk := task{id: id, seats: rotate(matchup, g), seeds: seedsFor(t.Setup.Seeds, id)}
				select {
				case tasks <- tk:
				case <-ctx.Done():
					return
				}
			}
			logger.Info().Msgf("queued matchup %d of %d", mi+1, len(t.MatchUps))
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		report.Games = append(report.Games, res.record)
		report.Moves = append(report.Moves, res.moves...)
		if res.record.Winner >= 0 {
			report.Wins[res.record.Seats[res.record.Winner]]++
		} else {
			report.Stopped++
		}
		logger.Info().Msgf("completed game %d with winner: %d", res.record.ID, res.record.Winner)
	}
	report.Duration = time.Since(start)
	sortRecords(report)

	if firstErr != nil {
		return report, fmt.Errorf("experiment %s: %w", t.Name, firstErr)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	logger.Info().Msgf("completed %s experiment", t.Name)

	if t.OutDir != "" {
		dir, err := store(t, report)
		if err != nil {
			return report, err
		}
		report.Dir = dir
	}
	return report, nil
}

// runGame plays a single game between the seated agents.
func runGame(ctx context.Context, t Tournament, tk task, logger zerolog.Logger) outcome {
	setup := t.Setup
	setup.Seeds = tk.seeds
	setup.Board.Players = len(tk.seats)

	agents := make([]agent.Agent, len(tk.seats))
	for seat, config := range tk.seats {
		agents[seat] = createAgent(config, tk.seeds.Env+uint64(seat)+1)
	}

	collector := metrics.NewCollector()
	options := append([]session.Option{session.WithLogger(logger), session.WithObserver(collector)}, t.Options...)
	s, err := session.Start(setup, agents, options...)
	if err != nil {
		return outcome{err: fmt.Errorf("game %d: %w", tk.id, err)}
	}
	collector.Start(s.State().CurrentPlayer())
	if _, err := s.Run(ctx); err != nil {
		return outcome{err: fmt.Errorf("game %d: %w", tk.id, err)}
	}
	gameMetric, moveMetrics := collector.Complete()

	seats := make([]int, len(tk.seats))
	for i, config := range tk.seats {
		seats[i] = config.ID
	}
	moves := make([]metrics.MoveRecord, len(moveMetrics))
	for i, mm := range moveMetrics {
		moves[i] = metrics.MoveRecord{Game: tk.id, MoveMetric: mm}
	}
	return outcome{
		record: metrics.GameRecord{ID: tk.id, Seats: seats, GameMetric: gameMetric},
		moves:  moves,
	}
}

func createAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	if config.Random {
		return agent.NewRandom(dice.NewSeeded(seed))
	}
	return agent.NewAI(agent.WithProfile(config.Profile), agent.WithEvaluation(game.EvaluateBorderStrength))
}

// rotate seats the match up shifted by round, so every contestant takes every seat.
func rotate(matchup []metrics.AgentConfig, round int) []metrics.AgentConfig {
	n := len(matchup)
	seats := make([]metrics.AgentConfig, n)
	for i := range seats {
		seats[i] = matchup[(i+round)%n]
	}
	return seats
}

// seedsFor derives per-game seeds. Fixed base seeds make the whole tournament repeatable.
func seedsFor(base dice.Seeds, id int) dice.Seeds {
	base = base.Resolve()
	return dice.Seeds{
		World: base.World + uint64(id),
		Env:   base.Env + uint64(id)*0x9e3779b9,
	}
}

func sortRecords(r *Report) {
	slices.SortFunc(r.Games, func(a, b metrics.GameRecord) int { return a.ID - b.ID })
	slices.SortFunc(r.Moves, func(a, b metrics.MoveRecord) int {
		if a.Game != b.Game {
			return a.Game - b.Game
		}
		return a.Step - b.Step
	})
}

func store(t Tournament, r *Report) (string, error) {
	writer, err := metrics.NewWriter(t.OutDir, t.Name, r.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(t.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(r.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(r.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored %s results in %s", t.Name, writer.Dir())
	return writer.Dir(), nil
}
