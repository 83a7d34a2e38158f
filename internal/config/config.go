// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Scoring  ScoringConfig  `koanf:"scoring"`
	Pricing  PricingConfig  `koanf:"pricing"`
	Fairness FairnessConfig `koanf:"fairness"`
	Model    ModelConfig    `koanf:"model"`
	Feed     FeedConfig     `koanf:"feed"`
	CORS     CORSConfig     `koanf:"cors"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// ReadTimeout and WriteTimeout bound request handling end to end.
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RateLimit is the per-client request budget per minute.
	RateLimit int `koanf:"rate_limit"`
}

// LoggingConfig configures the zerolog global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ScoringConfig holds feature-extraction and scorer tuning.
type ScoringConfig struct {
	// DistanceScaleMins converts Euclidean lat/lng distance to travel
	// minutes (minutes per coordinate unit).
	DistanceScaleMins float64 `koanf:"distance_scale_mins"`

	// NewcomerBoost is the multiplicative s_ml bump for cohort-newcomer
	// users on beginner-friendly events. Zero disables the boost.
	NewcomerBoost float64 `koanf:"newcomer_boost"`
}

// PricingConfig holds demand-decay and pulse parameters.
type PricingConfig struct {
	// LambdaPrice scales the pulse-centering penalty in the final score.
	LambdaPrice float64 `koanf:"lambda_price"`

	// LiquidityK multiplies capacity to form the sigmoid denominator.
	LiquidityK float64 `koanf:"liquidity_k"`

	// TauHours is the exponential decay time constant of net demand.
	TauHours float64 `koanf:"tau_hours"`
}

// FairnessConfig holds cohort-fairness parameters.
type FairnessConfig struct {
	// LambdaFair scales the exposure-gap boost when fairness is enabled.
	LambdaFair float64 `koanf:"lambda_fair"`
}

// ModelConfig locates the predictor artifact and training logs.
type ModelConfig struct {
	Path               string `koanf:"path"`
	ImpressionsLogPath string `koanf:"impressions_log_path"`
	EventsLogPath      string `koanf:"events_log_path"`
}

// FeedConfig holds feed ranking and cold-start parameters.
type FeedConfig struct {
	// DefaultLimit is the feed page size when the caller omits one.
	DefaultLimit int `koanf:"default_limit"`

	// ColdStartShownThreshold marks events with fewer impressions as cold.
	ColdStartShownThreshold int `koanf:"cold_start_shown_threshold"`

	// ColdStartShare reserves this fraction of feed slots for cold events.
	ColdStartShare float64 `koanf:"cold_start_share"`
}

// CORSConfig configures allowed origins for the HTTP surface.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// defaultConfig returns a Config with every default applied.
// Defaults are layered first, then overridden by file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit:    300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Scoring: ScoringConfig{
			DistanceScaleMins: 10.0,
			NewcomerBoost:     0.15,
		},
		Pricing: PricingConfig{
			LambdaPrice: 1.0,
			LiquidityK:  5.0,
			TauHours:    12.0,
		},
		Fairness: FairnessConfig{
			LambdaFair: 0.5,
		},
		Model: ModelConfig{
			Path:               "data/rsvp_model.json",
			ImpressionsLogPath: "data/impressions.jsonl",
			EventsLogPath:      "data/rsvps.jsonl",
		},
		Feed: FeedConfig{
			DefaultLimit:            20,
			ColdStartShownThreshold: 3,
			ColdStartShare:          0.2,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.RateLimit < 1 {
		return fmt.Errorf("server.rate_limit must be positive, got %d", c.Server.RateLimit)
	}
	if c.Scoring.DistanceScaleMins <= 0 {
		return fmt.Errorf("scoring.distance_scale_mins must be positive, got %g", c.Scoring.DistanceScaleMins)
	}
	if c.Scoring.NewcomerBoost < 0 {
		return fmt.Errorf("scoring.newcomer_boost must be non-negative, got %g", c.Scoring.NewcomerBoost)
	}
	if c.Pricing.LiquidityK <= 0 {
		return fmt.Errorf("pricing.liquidity_k must be positive, got %g", c.Pricing.LiquidityK)
	}
	if c.Pricing.TauHours <= 0 {
		return fmt.Errorf("pricing.tau_hours must be positive, got %g", c.Pricing.TauHours)
	}
	if c.Fairness.LambdaFair < 0 {
		return fmt.Errorf("fairness.lambda_fair must be non-negative, got %g", c.Fairness.LambdaFair)
	}
	if c.Feed.DefaultLimit < 1 {
		return fmt.Errorf("feed.default_limit must be positive, got %d", c.Feed.DefaultLimit)
	}
	if c.Feed.ColdStartShare < 0 || c.Feed.ColdStartShare > 1 {
		return fmt.Errorf("feed.cold_start_share %g out of range [0, 1]", c.Feed.ColdStartShare)
	}
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("cors.origins must not be empty")
	}
	return nil
}
