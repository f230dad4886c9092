package monitor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// EventLog appends alert events to a JSON Lines file. The file is opened
// and closed on every append so no handle outlives a cycle.
type EventLog struct {
	path string
}

// NewEventLog creates an event log writing to path
func NewEventLog(path string) *EventLog {
	return &EventLog{path: path}
}

// Path returns the file the log appends to
func (e *EventLog) Path() string {
	return e.path
}

// NewAlertEvent converts a finding to its persisted form
func NewAlertEvent(f Finding) AlertEvent {
	return AlertEvent{
		Timestamp: f.DetectedAt,
		Port:      f.Port,
		Process:   f.Process,
		PID:       f.PID,
		Type:      EventTypeNewPort,
		ID:        uuid.New().String(),
	}
}

// Append writes event as a single line
func (e *EventLog) Append(event AlertEvent) (err error) {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create event log directory: %w", err)
		}
	}

	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open event log %s: %w", e.path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close event log %s: %w", e.path, cerr)
		}
	}()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event log %s: %w", e.path, err)
	}

	return nil
}

// ReadEventLog parses an event log, skipping lines that are not valid events
func ReadEventLog(path string) ([]AlertEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	defer file.Close()

	var events []AlertEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event AlertEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		if event.Type == "" {
			continue
		}

		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("failed to scan event log: %w", err)
	}

	return events, nil
}
