// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package config provides centralized configuration for MatchPulse.
//
// Configuration is loaded in three layers with Koanf v2:
//
//  1. Defaults: built-in values for every setting
//  2. Config file: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment variables: highest priority, flat names such as
//     DISTANCE_SCALE_MINS or PRICING_LIQUIDITY_K
//
// The resulting Config is immutable after Load and safe for concurrent
// reads.
package config
