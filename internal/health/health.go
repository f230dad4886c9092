package health

import "strings"

// Status is the outcome of a single check
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// HealthCheck is the result of one preflight check
type HealthCheck struct {
	Name    string                 `json:"name"`
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Report collects all check results
type Report struct {
	Checks []HealthCheck `json:"checks"`
	Status Status        `json:"status"`
}

// NewReport computes the overall status: failed beats warning beats ok
func NewReport(checks []HealthCheck) Report {
	status := StatusOK
	for _, c := range checks {
		switch c.Status {
		case StatusFailed:
			status = StatusFailed
		case StatusWarning:
			if status == StatusOK {
				status = StatusWarning
			}
		}
	}
	return Report{Checks: checks, Status: status}
}

// Format renders the report as aligned text
func (r Report) Format() string {
	var sb strings.Builder
	for _, c := range r.Checks {
		mark := "✓"
		switch c.Status {
		case StatusWarning:
			mark = "!"
		case StatusFailed:
			mark = "✗"
		}
		sb.WriteString(mark + " " + padRight(c.Name, 18) + c.Message + "\n")
	}
	sb.WriteString("\nStatus: " + strings.ToUpper(string(r.Status)) + "\n")
	return sb.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s + " "
	}
	return s + strings.Repeat(" ", n-len(s))
}
