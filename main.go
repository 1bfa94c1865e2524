package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stackrankdice/agent"
	"stackrankdice/communication"
	"stackrankdice/config"
	"stackrankdice/experiments"
	"stackrankdice/session"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	mode := flag.String("mode", "play", "play, headless, experiment or replay")
	players := flag.Int("players", 0, "Number of players (overrides config)")
	humans := flag.Int("humans", 1, "Seats taken by console players in play mode")
	worldSeed := flag.Uint64("world-seed", 0, "Board seed, 0 for random (overrides config)")
	envSeed := flag.Uint64("env-seed", 0, "Dice seed, 0 for random (overrides config)")
	recordPath := flag.String("record", "", "Write the game record to this file")
	replayPath := flag.String("replay", "", "Record to replay in replay mode")
	experiment := flag.String("experiment", "baseline", "baseline or styles")
	games := flag.Int("games", experiments.NumGames, "Games per match up")
	workers := flag.Int("workers", 4, "Games played in parallel")
	outDir := flag.String("out", "experiments", "Directory for experiment results")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)

	if *players > 0 {
		cfg.Board.Players = *players
	}
	if *worldSeed != 0 {
		cfg.Session.Seeds.World = *worldSeed
	}
	if *envSeed != 0 {
		cfg.Session.Seeds.Env = *envSeed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case "play":
		err = play(ctx, cfg, *humans, *recordPath)
	case "headless":
		err = play(ctx, cfg, 0, *recordPath)
	case "experiment":
		err = runExperiment(ctx, cfg, *experiment, *games, *workers, *outDir)
	case "replay":
		err = replay(ctx, *replayPath)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", *mode)
	}
}

func play(ctx context.Context, cfg config.Config, humans int, recordPath string) error {
	console := communication.NewConsole(os.Stdin, os.Stdout)
	agents := make([]agent.Agent, cfg.Board.Players)
	for i := range agents {
		if i < humans {
			agents[i] = agent.NewHuman(console)
		} else {
			agents[i] = cfg.NewAI()
		}
	}

	options := cfg.SessionOptions()
	if humans > 0 {
		options = append(options, session.WithObserver(session.ObserverFunc(func(u session.Update) {
			for _, ev := range u.Events {
				fmt.Fprintf(os.Stdout, "  %v\n", ev)
			}
		})))
	}
	s, err := session.Start(cfg.Setup(), agents, options...)
	if err != nil {
		return err
	}
	if rec := s.Record(); rec != nil {
		log.Info().Msgf("session %s: world seed %d, env seed %d", s.ID, rec.Setup.Seeds.World, rec.Setup.Seeds.Env)
	}
	if humans > 0 {
		communication.Render(os.Stdout, s.State())
	}

	res, runErr := s.Run(ctx)
	if recordPath != "" {
		if err := saveRecord(s.Record(), recordPath); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if res.Stopped {
		log.Info().Msgf("no winner after %d turns", res.Turns)
	} else {
		log.Info().Msgf("player %d won after %d turns and %d moves", res.Winner, res.Turns, res.Moves)
	}
	return nil
}

func saveRecord(rec *session.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot save record: %w", err)
	}
	defer f.Close()
	return rec.Save(f)
}

func replay(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open record: %w", err)
	}
	defer f.Close()
	rec, err := session.LoadRecord(f)
	if err != nil {
		return err
	}
	res, err := session.Replay(ctx, rec)
	if err != nil {
		return err
	}
	log.Info().Msgf("replay matches: winner %d after %d turns", res.Winner, res.Turns)
	return nil
}

func runExperiment(ctx context.Context, cfg config.Config, name string, games, workers int, outDir string) error {
	var t experiments.Tournament
	switch name {
	case "baseline":
		t = experiments.BaselineTournament(cfg.Setup(), games)
	case "styles":
		t = experiments.StyleTournament(cfg.Setup(), games)
	default:
		return fmt.Errorf("unknown experiment %q", name)
	}
	t.Workers = workers
	t.OutDir = outDir
	t.Options = append(cfg.SessionOptions(), session.WithLogger(log.Logger.Level(zerolog.WarnLevel)))

	report, err := experiments.Run(ctx, t)
	if err != nil {
		return err
	}
	gamesPerSec, movesPerSec := report.Throughput()
	for id, wins := range report.Wins {
		log.Info().Msgf("agent %d won %d of %d games", id, wins, len(report.Games))
	}
	log.Info().Msgf("%d stopped, %.1f games/s, %.0f moves/s, results in %s", report.Stopped, gamesPerSec, movesPerSec, report.Dir)
	return nil
}
