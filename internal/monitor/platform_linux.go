//go:build linux
// +build linux

package monitor

import "github.com/prometheus/procfs"

// DefaultProcRoot is where the kernel exposes socket and process tables
const DefaultProcRoot = procfs.DefaultMountPoint

func platformSupported() bool { return true }
