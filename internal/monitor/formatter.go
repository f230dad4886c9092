package monitor

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// consoleTimeFormat mirrors a local wall-clock timestamp with milliseconds
const consoleTimeFormat = "2006-01-02 15:04:05.000"

// Formatter renders console status lines
type Formatter struct {
	alert  lipgloss.Style
	ok     lipgloss.Style
	notice lipgloss.Style
	header lipgloss.Style
}

// NewFormatter creates a formatter whose color support follows out.
// noColor forces plain text.
func NewFormatter(out io.Writer, noColor bool) *Formatter {
	r := lipgloss.NewRenderer(out)
	if noColor {
		plain := r.NewStyle()
		return &Formatter{alert: plain, ok: plain, notice: plain, header: plain}
	}
	return &Formatter{
		alert:  r.NewStyle().Foreground(lipgloss.Color("9")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("10")),
		notice: r.NewStyle().Foreground(lipgloss.Color("11")),
		header: r.NewStyle().Bold(true),
	}
}

// Started formats the startup banner
func (f *Formatter) Started(at time.Time) string {
	return f.notice.Render(fmt.Sprintf("[%s] Port Monitor started...", at.Format(consoleTimeFormat)))
}

// Baseline formats the sorted list of ports captured at startup
func (f *Formatter) Baseline(s Snapshot) string {
	ports := s.Ports()
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return f.notice.Render(fmt.Sprintf("Baseline ports: [%s]", strings.Join(parts, ", ")))
}

// Alert formats a single new-port finding
func (f *Formatter) Alert(finding Finding) string {
	return f.alert.Render(fmt.Sprintf("%s [ALERT] New port opened: %d (Process: %s, PID: %d)",
		finding.DetectedAt.Format(consoleTimeFormat), finding.Port, finding.Process, finding.PID))
}

// OK formats the status line for a cycle without findings
func (f *Formatter) OK(at time.Time) string {
	return f.ok.Render(fmt.Sprintf("%s [OK] No new ports", at.Format(consoleTimeFormat)))
}

// Warning formats a non-fatal problem such as a failed log write
func (f *Formatter) Warning(at time.Time, msg string) string {
	return f.notice.Render(fmt.Sprintf("%s [WARN] %s", at.Format(consoleTimeFormat), msg))
}

// FormatSnapshot formats a snapshot as a human-readable table
func (f *Formatter) FormatSnapshot(s Snapshot, at time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Timestamp: %s\n", at.Format(time.RFC3339))
	sb.WriteString(strings.Repeat("━", 44) + "\n")
	fmt.Fprintf(&sb, "%s\n", f.header.Render(fmt.Sprintf("LISTENING (%d ports)", len(s))))

	if len(s) == 0 {
		sb.WriteString("  No listening ports\n")
		return sb.String()
	}

	sb.WriteString("  Port    PID      Process\n")
	for _, port := range s.Ports() {
		owner := s[port]
		fmt.Fprintf(&sb, "  %-6d  %-7d  %s\n", port, owner.PID, owner.Name)
	}

	return sb.String()
}

// FormatSnapshotJSON formats a snapshot as JSON, ordered by port
func FormatSnapshotJSON(s Snapshot) (string, error) {
	type entry struct {
		Port int `json:"port"`
		Owner
	}
	entries := make([]entry, 0, len(s))
	for _, port := range s.Ports() {
		entries = append(entries, entry{Port: port, Owner: s[port]})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FormatEvent formats a stored event for the events command
func (f *Formatter) FormatEvent(e AlertEvent) string {
	return fmt.Sprintf("%s  %-6d  %-7d  %s",
		e.Timestamp.Local().Format(consoleTimeFormat), e.Port, e.PID, e.Process)
}
