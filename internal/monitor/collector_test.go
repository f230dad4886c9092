package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorResolvesOwners(t *testing.T) {
	proc := newFakeProc(t)
	proc.listen4(22, "1001")
	proc.listen4(8080, "1002")
	proc.established(45000, "1003")
	proc.process(100, "sshd", "1001")
	proc.process(200, "python3", "1002", "1003")
	root := proc.write()

	snapshot, err := NewCollector(root, time.Second).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Snapshot{
		22:   {Name: "sshd", PID: 100},
		8080: {Name: "python3", PID: 200},
	}, snapshot)
}

func TestCollectorUnknownOwnerIsKept(t *testing.T) {
	proc := newFakeProc(t)
	proc.listen4(631, "2001") // owner not visible to us
	proc.listen4(9000, "2002")
	proc.process(300, "", "2002") // comm unreadable
	root := proc.write()

	snapshot, err := NewCollector(root, time.Second).Collect(context.Background())
	require.NoError(t, err)

	require.Contains(t, snapshot, 631)
	assert.Equal(t, Owner{Name: UnknownProcess, PID: 0}, snapshot[631])

	require.Contains(t, snapshot, 9000)
	assert.Equal(t, Owner{Name: UnknownProcess, PID: 300}, snapshot[9000])
}

func TestCollectorMergesDualStack(t *testing.T) {
	proc := newFakeProc(t)
	proc.listen4(80, "3001")
	proc.listen6(80, "3002")
	proc.listen6(443, "3003")
	proc.process(400, "nginx", "3002", "3003")
	root := proc.write()

	snapshot, err := NewCollector(root, time.Second).Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot, 2)
	assert.Equal(t, Owner{Name: "nginx", PID: 400}, snapshot[80], "resolved tcp6 owner should win over unresolved tcp entry")
	assert.Equal(t, Owner{Name: "nginx", PID: 400}, snapshot[443])
}

func TestCollectorMissingTables(t *testing.T) {
	_, err := NewCollector(t.TempDir(), time.Second).Collect(context.Background())
	assert.ErrorIs(t, err, ErrNoListenTables)
}

func TestCollectorCancelled(t *testing.T) {
	proc := newFakeProc(t)
	proc.listen4(22, "1001")
	proc.process(100, "sshd", "1001")
	root := proc.write()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollector(root, 0).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotPortsSorted(t *testing.T) {
	s := Snapshot{8080: {}, 22: {}, 443: {}}
	assert.Equal(t, []int{22, 443, 8080}, s.Ports())
}
