// Package config loads game settings from a YAML file and STACKRANK_* environment
// variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"stackrankdice/agent"
	"stackrankdice/boardgen"
	"stackrankdice/dice"
	"stackrankdice/game"
	"stackrankdice/meta"
	"stackrankdice/session"
)

const EnvPrefix = "STACKRANK_"

type SessionConfig struct {
	AutoPass      bool       `yaml:"auto_pass" env:"AUTO_PASS"`
	MaxTurns      int        `yaml:"max_turns" env:"MAX_TURNS"`
	MaxRejections int        `yaml:"max_rejections" env:"MAX_REJECTIONS"`
	Seeds         dice.Seeds `yaml:"seeds" envPrefix:"SEED_"`
}

type Config struct {
	Rules    game.StandardRules `yaml:"rules" envPrefix:"RULES_"`
	AI       agent.Profile      `yaml:"ai" envPrefix:"AI_"`
	Board    boardgen.Config    `yaml:"board" envPrefix:"BOARD_"`
	Session  SessionConfig      `yaml:"session" envPrefix:"SESSION_"`
	LogLevel string             `yaml:"log_level" env:"LOG_LEVEL"`
}

func Default() Config {
	return Config{
		Rules: *game.NewStandardRules(),
		AI:    agent.DefaultProfile(),
		Board: boardgen.DefaultConfig(),
		Session: SessionConfig{
			AutoPass:      true,
			MaxTurns:      meta.MAX_TURNS,
			MaxRejections: meta.MAX_REJECTIONS,
		},
		LogLevel: "info",
	}
}

// Load starts from Default, applies the YAML file at path (skipped when path is empty) and
// then the environment. Unknown YAML keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseEnv overrides fields of target from STACKRANK_* variables. Unset variables leave
// fields alone.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	board := c.Board
	board.MaxDice = c.Rules.MaxDiceCount
	if err := board.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	ai := c.AI
	if ai.Aggressiveness < 0 || ai.TerritoryBias < 0 || ai.Caution < 0 {
		return fmt.Errorf("ai: weights must not be negative")
	}
	if ai.MinWinProbability < 0 || ai.MinWinProbability > 1 {
		return fmt.Errorf("ai: min win probability %v outside [0, 1]", ai.MinWinProbability)
	}
	if c.Session.MaxTurns < 1 {
		return fmt.Errorf("session: max turns must be positive, got %d", c.Session.MaxTurns)
	}
	if c.Session.MaxRejections < 1 {
		return fmt.Errorf("session: max rejections must be positive, got %d", c.Session.MaxRejections)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

// Setup is the session setup described by c.
func (c Config) Setup() session.Setup {
	return session.Setup{
		Board: c.Board,
		Rules: c.Rules,
		Seeds: c.Session.Seeds,
	}
}

func (c Config) SessionOptions() []session.Option {
	return []session.Option{
		session.WithAutoPass(c.Session.AutoPass),
		session.WithMaxTurns(c.Session.MaxTurns),
		session.WithMaxRejections(c.Session.MaxRejections),
	}
}

// NewAI builds an AI agent with the configured profile.
func (c Config) NewAI() *agent.AI {
	return agent.NewAI(agent.WithProfile(c.AI))
}
