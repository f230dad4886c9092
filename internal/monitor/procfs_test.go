package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const procNetHeader = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"

// fakeProc builds a minimal /proc tree for collector tests
type fakeProc struct {
	t    *testing.T
	root string
	tcp  []string
	tcp6 []string
}

func newFakeProc(t *testing.T) *fakeProc {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "net"), 0o755))
	return &fakeProc{t: t, root: root}
}

// listen4 adds a LISTEN row to net/tcp for 0.0.0.0:port
func (p *fakeProc) listen4(port int, inode string) {
	p.tcp = append(p.tcp, tcpRow("00000000", port, "0A", inode))
}

// listen6 adds a LISTEN row to net/tcp6 for [::]:port
func (p *fakeProc) listen6(port int, inode string) {
	p.tcp6 = append(p.tcp6, tcpRow(strings.Repeat("0", 32), port, "0A", inode))
}

// established adds a non-listening row to net/tcp
func (p *fakeProc) established(port int, inode string) {
	p.tcp = append(p.tcp, tcpRow("0100007F", port, "01", inode))
}

// process creates <pid>/comm and fd links for the given socket inodes.
// An empty name skips comm so the lookup fails.
func (p *fakeProc) process(pid int, name string, inodes ...string) {
	dir := filepath.Join(p.root, strconv.Itoa(pid))
	require.NoError(p.t, os.MkdirAll(filepath.Join(dir, "fd"), 0o755))
	if name != "" {
		require.NoError(p.t, os.WriteFile(filepath.Join(dir, "comm"), []byte(name+"\n"), 0o644))
	}
	require.NoError(p.t, os.Symlink("/dev/null", filepath.Join(dir, "fd", "0")))
	for i, inode := range inodes {
		link := filepath.Join(dir, "fd", strconv.Itoa(i+3))
		require.NoError(p.t, os.Symlink("socket:["+inode+"]", link))
	}
}

// write flushes the socket tables; a nil table is left absent
func (p *fakeProc) write() string {
	p.writeTable("tcp", p.tcp)
	p.writeTable("tcp6", p.tcp6)
	return p.root
}

func (p *fakeProc) writeTable(name string, rows []string) {
	if rows == nil {
		return
	}
	content := procNetHeader + strings.Join(rows, "")
	require.NoError(p.t, os.WriteFile(filepath.Join(p.root, "net", name), []byte(content), 0o644))
}

func tcpRow(hexIP string, port int, state, inode string) string {
	return fmt.Sprintf("   0: %s:%04X 00000000:0000 %s 00000000:00000000 00:00000000 00000000  1000        0 %s 1 0000000000000000 100 0 0 10 0\n",
		hexIP, port, state, inode)
}
