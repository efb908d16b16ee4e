// Package config loads runtime settings from config.json and WEIXIANG_*
// environment variables. Environment values win over the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"

	"weixiang/pkg/economy"
	"weixiang/pkg/estimate"
	"weixiang/pkg/game"
	"weixiang/pkg/i18n"
)

const FileName = "config.json"

var ErrNotFound = errors.New("config.json not found")

type Config struct {
	// Engine is the GTP analysis engine; relative paths resolve against
	// the directory holding config.json.
	Engine           string   `json:"engine" env:"WEIXIANG_ENGINE"`
	EngineArgs       []string `json:"engine_args" env:"WEIXIANG_ENGINE_ARGS" envSeparator:" "`
	OwnershipCommand string   `json:"ownership_command" env:"WEIXIANG_OWNERSHIP_COMMAND"`
	// EstimatorURL selects the HTTP estimator instead of a local engine.
	EstimatorURL   string `json:"estimator_url" env:"WEIXIANG_ESTIMATOR_URL"`
	Listen         string `json:"listen" env:"WEIXIANG_LISTEN"`
	LivenessMillis int    `json:"liveness_millis" env:"WEIXIANG_LIVENESS_MILLIS"`
	EstimateMillis int    `json:"estimate_millis" env:"WEIXIANG_ESTIMATE_MILLIS"`
	QuitMillis     int    `json:"quit_millis" env:"WEIXIANG_QUIT_MILLIS"`
	Language       string `json:"language" env:"WEIXIANG_LANGUAGE"`

	TerritoryDivisor int `json:"territory_divisor" env:"WEIXIANG_TERRITORY_DIVISOR"`
	CaptureDivisor   int `json:"capture_divisor" env:"WEIXIANG_CAPTURE_DIVISOR"`
	CenterBonus      int `json:"center_bonus" env:"WEIXIANG_CENTER_BONUS"`
	WinThreshold     int `json:"win_threshold" env:"WEIXIANG_WIN_THRESHOLD"`
	HistoryCap       int `json:"history_cap" env:"WEIXIANG_HISTORY_CAP"`
	SummonAttempts   int `json:"summon_attempts" env:"WEIXIANG_SUMMON_ATTEMPTS"`
	StartingTokens   int `json:"starting_tokens" env:"WEIXIANG_STARTING_TOKENS"`

	dir string
}

func Default() Config {
	r := game.DefaultRules()
	return Config{
		OwnershipCommand: estimate.DefaultOwnershipCommand,
		Listen:           ":8080",
		LivenessMillis:   100,
		EstimateMillis:   2000,
		QuitMillis:       3000,
		Language:         "en",
		TerritoryDivisor: r.Economy.TerritoryDivisor,
		CaptureDivisor:   r.Economy.CaptureDivisor,
		CenterBonus:      r.Economy.CenterBonus,
		WinThreshold:     r.WinThreshold,
		HistoryCap:       r.HistoryCap,
		SummonAttempts:   r.SummonAttempts,
		StartingTokens:   r.StartingTokens,
	}
}

// Load reads path, or the config.json found by FindConfigPath when path is
// empty, over the defaults and then applies the environment. A missing
// config.json is not an error when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		found, _, err := FindConfigPath()
		switch {
		case errors.Is(err, ErrNotFound):
			cfg := Default()
			if cwd, err := os.Getwd(); err == nil {
				cfg.dir = cwd
			}
			return cfg, ParseEnv(&cfg)
		case err != nil:
			return Config{}, err
		}
		path = found
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	return cfg, ParseEnv(&cfg)
}

// FindConfigPath walks up from the working directory looking for
// config.json and returns its path and directory.
func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	dir := cwd
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, filepath.Dir(path), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", fmt.Errorf("%w from %s", ErrNotFound, cwd)
}

// LoadConfig decodes the JSON file at path over the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// ParseEnv applies WEIXIANG_* variables to target. Unset variables leave
// fields as they are.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// EnginePath resolves Engine against the config directory.
func (c Config) EnginePath() (string, error) {
	if c.Engine == "" {
		return "", errors.New("engine path is required")
	}
	if filepath.IsAbs(c.Engine) || c.dir == "" {
		return c.Engine, nil
	}
	return filepath.Join(c.dir, c.Engine), nil
}

func (c Config) Rules() game.Rules {
	return game.Rules{
		Economy: economy.Rules{
			TerritoryDivisor: c.TerritoryDivisor,
			CaptureDivisor:   c.CaptureDivisor,
			CenterBonus:      c.CenterBonus,
		},
		WinThreshold:   c.WinThreshold,
		HistoryCap:     c.HistoryCap,
		SummonAttempts: c.SummonAttempts,
		StartingTokens: c.StartingTokens,
	}
}

func (c Config) Liveness() time.Duration {
	return time.Duration(c.LivenessMillis) * time.Millisecond
}

func (c Config) EstimateTimeout() time.Duration {
	return time.Duration(c.EstimateMillis) * time.Millisecond
}

func (c Config) QuitTimeout() time.Duration {
	return time.Duration(c.QuitMillis) * time.Millisecond
}

func (c Config) Tag() language.Tag {
	return i18n.Match(c.Language)
}
