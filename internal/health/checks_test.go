package health

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alexander-50/Port-Stat/internal/config"
	"github.com/Alexander-50/Port-Stat/internal/monitor"
)

func TestNewReportStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all ok", []Status{StatusOK, StatusOK}, StatusOK},
		{"warning wins over ok", []Status{StatusOK, StatusWarning}, StatusWarning},
		{"failed wins over warning", []Status{StatusWarning, StatusFailed, StatusOK}, StatusFailed},
		{"empty", nil, StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var checks []HealthCheck
			for i, s := range tt.statuses {
				checks = append(checks, HealthCheck{Name: string(rune('a' + i)), Status: s})
			}
			if got := NewReport(checks).Status; got != tt.want {
				t.Errorf("NewReport() status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckSocketTablesMissing(t *testing.T) {
	check, snapshot := CheckSocketTables(context.Background(), t.TempDir(), time.Second)
	if check.Status != StatusFailed {
		t.Errorf("Expected failed status, got %s", check.Status)
	}
	if snapshot != nil {
		t.Error("Expected no snapshot on failure")
	}
}

func TestCheckOwnerVisibility(t *testing.T) {
	resolved := monitor.Snapshot{22: {Name: "sshd", PID: 1}}
	if got := CheckOwnerVisibility(resolved).Status; got != StatusOK {
		t.Errorf("Expected ok, got %s", got)
	}

	partial := monitor.Snapshot{22: {Name: "sshd", PID: 1}, 631: {Name: monitor.UnknownProcess}}
	check := CheckOwnerVisibility(partial)
	if check.Status != StatusWarning {
		t.Errorf("Expected warning, got %s", check.Status)
	}
	if !strings.Contains(check.Message, "1 of 2") {
		t.Errorf("Unexpected message: %s", check.Message)
	}
}

func TestCheckEventLog(t *testing.T) {
	if got := CheckEventLog("").Message; got != "Disabled" {
		t.Errorf("Expected disabled, got %q", got)
	}

	path := filepath.Join(t.TempDir(), "logs", "events.log")
	check := CheckEventLog(path)
	if check.Status != StatusOK {
		t.Errorf("Expected ok for writable path, got %s: %s", check.Status, check.Message)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected file to exist: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("Health check must not write events, file has %d bytes", info.Size())
	}

	if got := CheckEventLog(t.TempDir()).Status; got != StatusFailed {
		t.Errorf("Expected failed for a directory path, got %s", got)
	}
}

func TestCheckMetricsAddr(t *testing.T) {
	if got := CheckMetricsAddr("").Status; got != StatusOK {
		t.Errorf("Expected ok when disabled, got %s", got)
	}
	if got := CheckMetricsAddr("127.0.0.1:0").Status; got != StatusOK {
		t.Errorf("Expected ok for ephemeral port, got %s", got)
	}
	if got := CheckMetricsAddr("not-an-address").Status; got != StatusFailed {
		t.Errorf("Expected failed for invalid address, got %s", got)
	}
}

func TestReportFormat(t *testing.T) {
	report := NewReport([]HealthCheck{
		{Name: "socket_tables", Status: StatusOK, Message: "3 listening ports"},
		{Name: "journal", Status: StatusWarning, Message: "unreachable"},
	})

	out := report.Format()
	if !strings.Contains(out, "✓ socket_tables") || !strings.Contains(out, "! journal") {
		t.Errorf("Unexpected format:\n%s", out)
	}
	if !strings.Contains(out, "Status: WARNING") {
		t.Errorf("Missing overall status:\n%s", out)
	}
}

func TestCheckConfigurationExplicitPath(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("HOME", dir)
	t.Setenv("PORTSTAT_CONFIG", "")

	cfg := config.GetDefaultConfig()

	check := CheckConfiguration(cfg, "")
	if check.Message != "Defaults only (no config files)" {
		t.Errorf("Expected defaults message, got %q", check.Message)
	}

	path := filepath.Join(dir, "extra.toml")
	if err := os.WriteFile(path, []byte("[monitor]\ninterval = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	check = CheckConfiguration(cfg, path)
	if check.Status != StatusOK {
		t.Errorf("Expected ok, got %s", check.Status)
	}
	if check.Message != path {
		t.Errorf("Expected message %q, got %q", path, check.Message)
	}
}
