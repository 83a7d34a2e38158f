// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

// Package store is the in-memory state store behind the matching
// engine: users, opportunities, the interaction log, per-opportunity
// demand state, RSVPs, and the last published assignment.
//
// A single coarse mutex guards all state. Reads hand out deep-copied
// snapshots so the engine can score and solve without holding the lock.
// Insertion order is preserved for users and opportunities, which keeps
// solve runs deterministic.
//
// Training data (impressions and RSVP outcomes) is appended to JSONL
// logs on a best-effort basis; log failures are counted but never
// surface to callers.
package store
