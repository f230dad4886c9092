package monitor

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"
)

// ErrNoListenTables is returned when neither tcp nor tcp6 tables could be read
var ErrNoListenTables = errors.New("no readable TCP socket tables")

// tcpListenState is the kernel's TCP_LISTEN state (0A in /proc/net/tcp)
const tcpListenState = 0x0A

// listenSocket is a single LISTEN entry from /proc/net/tcp{,6}
type listenSocket struct {
	Port  int
	Inode uint64
}

// readListenSockets reads LISTEN sockets from the tcp and tcp6 tables.
// One missing table is tolerated since IPv6 may be disabled.
func readListenSockets(fs procfs.FS) ([]listenSocket, error) {
	var sockets []listenSocket
	var errs []error

	tables := []struct {
		name string
		read func() (procfs.NetTCP, error)
	}{
		{"tcp", fs.NetTCP},
		{"tcp6", fs.NetTCP6},
	}

	for _, table := range tables {
		lines, err := table.read()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", table.name, err))
			continue
		}
		sockets = append(sockets, listening(lines)...)
	}

	if len(errs) == len(tables) {
		return nil, fmt.Errorf("%w: %w", ErrNoListenTables, errors.Join(errs...))
	}

	return sockets, nil
}

// listening keeps LISTEN rows; port 0 is never a real listener
func listening(lines procfs.NetTCP) []listenSocket {
	var sockets []listenSocket
	for _, line := range lines {
		if line.St != tcpListenState || line.LocalPort == 0 {
			continue
		}
		sockets = append(sockets, listenSocket{
			Port:  int(line.LocalPort),
			Inode: line.Inode,
		})
	}
	return sockets
}
