package monitor

import (
	"sort"
	"time"
)

// Detector compares consecutive snapshots for newly opened ports
type Detector struct {
	filter Filter
}

// NewDetector creates a detector applying filter to its findings
func NewDetector(filter Filter) *Detector {
	return &Detector{filter: filter}
}

// Analyze returns the ports present in current but not in previous, minus
// anything the filter excludes. Findings are ordered by port.
func (d *Detector) Analyze(previous, current Snapshot, at time.Time) []Finding {
	var findings []Finding

	for port, owner := range current {
		if _, known := previous[port]; known {
			continue
		}
		if d.filter.Excludes(port, owner.Name) {
			continue
		}
		findings = append(findings, Finding{
			Port:       port,
			Process:    owner.Name,
			PID:        owner.PID,
			DetectedAt: at,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		return findings[i].Port < findings[j].Port
	})

	return findings
}

// Suppressed counts new ports that the filter hid from this cycle's findings
func (d *Detector) Suppressed(previous, current Snapshot) int {
	n := 0
	for port, owner := range current {
		if _, known := previous[port]; !known && d.filter.Excludes(port, owner.Name) {
			n++
		}
	}
	return n
}
