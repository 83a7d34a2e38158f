// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file paths searched in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/matchpulse/config.yaml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envAliases maps the flat environment variable names the service has
// always honored to their koanf paths.
var envAliases = map[string]string{
	"DISTANCE_SCALE_MINS":        "scoring.distance_scale_mins",
	"NEWCOMER_BOOST":             "scoring.newcomer_boost",
	"PRICING_LAMBDA":             "pricing.lambda_price",
	"PRICING_LIQUIDITY_K":        "pricing.liquidity_k",
	"DEMAND_DECAY_TAU_HOURS":     "pricing.tau_hours",
	"FAIRNESS_LAMBDA":            "fairness.lambda_fair",
	"RSVP_MODEL_PATH":            "model.path",
	"RSVP_IMPRESSIONS_LOG_PATH":  "model.impressions_log_path",
	"RSVP_EVENTS_LOG_PATH":       "model.events_log_path",
	"CORS_ORIGINS":               "cors.origins",
	"SERVER_HOST":                "server.host",
	"SERVER_PORT":                "server.port",
	"SERVER_RATE_LIMIT":          "server.rate_limit",
	"LOG_LEVEL":                  "logging.level",
	"LOG_FORMAT":                 "logging.format",
	"FEED_DEFAULT_LIMIT":         "feed.default_limit",
	"COLD_START_SHOWN_THRESHOLD": "feed.cold_start_shown_threshold",
	"COLD_START_SHARE":           "feed.cold_start_share",
}

// Load builds the Config from defaults, an optional YAML file, and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional config file
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// CORS_ORIGINS arrives as a comma-separated string; koanf needs a slice.
	if raw := k.String("cors.origins"); raw != "" && !strings.HasPrefix(raw, "[") {
		origins := splitAndTrim(raw)
		if len(origins) > 0 {
			if err := k.Set("cors.origins", origins); err != nil {
				return nil, fmt.Errorf("set cors.origins: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile resolves the config file path, honoring CONFIG_PATH first.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps environment variable names to koanf paths.
// Only explicitly aliased variables are loaded; everything else is
// ignored so unrelated environment noise cannot leak into the config.
func envTransform(name string) string {
	if path, ok := envAliases[name]; ok {
		return path
	}
	return ""
}

// splitAndTrim splits a comma-separated string, dropping empty entries.
func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
