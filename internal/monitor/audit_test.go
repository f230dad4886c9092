package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "events.log")
	log := NewEventLog(path)

	finding := Finding{Port: 8080, Process: "python", PID: 200, DetectedAt: time.Now()}
	require.NoError(t, log.Append(NewAlertEvent(finding)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 1)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &raw))
	assert.Equal(t, "new_port", raw["type"])
	assert.Equal(t, float64(8080), raw["port"])
	assert.Equal(t, "python", raw["process"])
	assert.Equal(t, float64(200), raw["pid"])

	ts, ok := raw["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err, "timestamp should be ISO-8601")

	id, ok := raw["id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestEventLogAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"new_port","port":1}`+"\n"), 0o644))

	log := NewEventLog(path)
	require.NoError(t, log.Append(NewAlertEvent(Finding{Port: 2, Process: "a", PID: 1})))
	require.NoError(t, log.Append(NewAlertEvent(Finding{Port: 3, Process: "b", PID: 2})))

	events, err := ReadEventLog(path)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{events[0].Port, events[1].Port, events[2].Port})
}

func TestEventLogUnwritable(t *testing.T) {
	// A directory where the file should be makes every open fail
	path := t.TempDir()

	err := NewEventLog(path).Append(NewAlertEvent(Finding{Port: 1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestReadEventLogSkipsInvalidLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	content := strings.Join([]string{
		`{"timestamp":"2026-01-01T00:00:00Z","port":22,"process":"sshd","pid":1,"type":"new_port"}`,
		`not json`,
		``,
		`{"unrelated":true}`,
		`{"timestamp":"2026-01-01T00:00:05Z","port":80,"process":"nginx","pid":2,"type":"new_port"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	events, err := ReadEventLog(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 22, events[0].Port)
	assert.Equal(t, "nginx", events[1].Process)
}

func TestReadEventLogMissing(t *testing.T) {
	_, err := ReadEventLog(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}
