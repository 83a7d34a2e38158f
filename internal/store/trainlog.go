// MatchPulse - Two-Sided Event Matching Engine
// Copyright 2026 MatchPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/matchpulse/matchpulse

package store

import (
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/matchpulse/matchpulse/internal/metrics"
)

// trainLog appends JSONL records to a training data file. Writes are
// best effort: failures are counted and logged, never returned.
type trainLog struct {
	mu     sync.Mutex
	path   string
	name   string
	logger zerolog.Logger
}

// newTrainLog creates a log writer. An empty path disables the log.
func newTrainLog(path, name string, logger zerolog.Logger) *trainLog {
	return &trainLog{path: path, name: name, logger: logger}
}

func (l *trainLog) append(record any) {
	if l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line, err := json.Marshal(record)
	if err != nil {
		l.fail(err)
		return
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			l.fail(err)
			return
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		l.fail(err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		l.fail(err)
	}
}

func (l *trainLog) fail(err error) {
	metrics.TrainingLogFailures.WithLabelValues(l.name).Inc()
	l.logger.Warn().Err(err).Str("log", l.name).Msg("training log write failed")
}
