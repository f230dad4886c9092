package monitor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
)

// socketOwners maps socket inodes to the pid holding them. The lowest pid wins
// when a socket is shared. Processes that exit mid-walk or deny access are skipped.
func socketOwners(ctx context.Context, fs procfs.FS, want map[uint64]struct{}) (map[uint64]int, error) {
	owners := make(map[uint64]int, len(want))

	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	sort.Sort(procs)

	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return owners, err
		}
		if len(owners) == len(want) {
			break
		}

		targets, err := p.FileDescriptorTargets()
		if err != nil {
			continue
		}

		for _, target := range targets {
			inode, ok := socketInode(target)
			if !ok {
				continue
			}
			if _, wanted := want[inode]; !wanted {
				continue
			}
			if _, seen := owners[inode]; !seen {
				owners[inode] = p.PID
			}
		}
	}

	return owners, nil
}

// socketInode extracts the inode from a "socket:[12345]" fd target
func socketInode(target string) (uint64, bool) {
	if !strings.HasPrefix(target, "socket:[") || !strings.HasSuffix(target, "]") {
		return 0, false
	}
	inode, err := strconv.ParseUint(target[len("socket:["):len(target)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return inode, true
}

// lookupProcessName returns the short command name of pid
func lookupProcessName(fs procfs.FS, pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("no owning process for socket")
	}

	p, err := fs.Proc(pid)
	if err != nil {
		return "", fmt.Errorf("failed to inspect pid %d: %w", pid, err)
	}

	name, err := p.Comm()
	if err != nil {
		return "", fmt.Errorf("failed to inspect pid %d: %w", pid, err)
	}
	if name == "" {
		return "", fmt.Errorf("pid %d has an empty command name", pid)
	}

	return name, nil
}
