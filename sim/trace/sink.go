package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink receives every record as it is emitted.
type Sink interface {
	Emit(rec Record) error
	Close() error
}

// JSONLSink writes one JSON object per line to a file.
// It is safe for concurrent use. A nil JSONLSink is safe to use;
// all methods are no-ops on nil receiver.
type JSONLSink struct {
	mu    sync.Mutex
	file  *os.File
	enc   *json.Encoder
	runID string
}

type jsonlLine struct {
	RunID string `json:"run_id,omitempty"`
	Record
}

// NewJSONLSink creates (or truncates) path, creating parent directories as needed.
func NewJSONLSink(path, runID string) (*JSONLSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating event log: %w", err)
	}
	return &JSONLSink{file: f, enc: json.NewEncoder(f), runID: runID}, nil
}

// Emit writes rec as one line.
func (s *JSONLSink) Emit(rec Record) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	return s.enc.Encode(jsonlLine{RunID: s.runID, Record: rec})
}

// Close flushes and closes the underlying file.
func (s *JSONLSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// LogSink forwards records to logrus at debug level.
type LogSink struct{}

// Emit logs rec.
func (LogSink) Emit(rec Record) error {
	logrus.Debugf("[t=%09d tick %05d] %-14s slot=%d worker=%s item=%s",
		rec.Time, rec.Tick, rec.Kind, rec.Slot, rec.WorkerID, rec.Item)
	return nil
}

// Close is a no-op.
func (LogSink) Close() error { return nil }
