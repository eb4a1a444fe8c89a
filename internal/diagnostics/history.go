package diagnostics

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// ErrHistoryClosed is returned when writing to a closed history
var ErrHistoryClosed = errors.New("episode history is closed")

// History appends episode records to a file, one JSON object per line.
type History struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	w       *bufio.Writer
	written int64

	logger zerolog.Logger
}

// OpenHistory opens path for appending, creating it and its directory if
// needed. Earlier runs' records are kept.
func OpenHistory(path string, logger zerolog.Logger) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return &History{
		path:   path,
		file:   f,
		w:      bufio.NewWriter(f),
		logger: logger.With().Str("component", "episode_history").Str("path", path).Logger(),
	}, nil
}

// Write appends one record and flushes it to the file.
func (h *History) Write(rec EpisodeRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return ErrHistoryClosed
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal episode %d: %w", rec.Episode, err)
	}
	if _, err := h.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write episode %d: %w", rec.Episode, err)
	}
	if err := h.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush episode %d: %w", rec.Episode, err)
	}
	h.written++
	return nil
}

// Written returns how many records this writer appended.
func (h *History) Written() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.written
}

// Close syncs and closes the file. Closing twice is a no-op.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.file == nil {
		return nil
	}
	if err := h.w.Flush(); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to flush history")
	}
	if err := h.file.Sync(); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to sync history")
	}
	err := h.file.Close()
	h.file = nil
	h.logger.Debug().Int64("written", h.written).Msg("Episode history closed")
	return err
}

// ReadHistory loads every record from a history file.
func ReadHistory(path string) ([]EpisodeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var records []EpisodeRecord
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec EpisodeRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return records, fmt.Errorf("history line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read history: %w", err)
	}
	return records, nil
}
