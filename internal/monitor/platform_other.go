//go:build !linux
// +build !linux

package monitor

import "github.com/prometheus/procfs"

// DefaultProcRoot is where the kernel exposes socket and process tables
const DefaultProcRoot = procfs.DefaultMountPoint

// platformSupported is false off Linux unless a proc root is supplied explicitly
func platformSupported() bool { return false }
