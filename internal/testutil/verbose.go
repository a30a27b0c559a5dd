// Package testutil collects small helpers shared by the engine's test
// files: debug-log gating and skip-if-unavailable checks for tests that
// need a real FUSE mount.
package testutil

import (
	"log"
	"os"
	"runtime"
	"testing"
)

func init() {
	// For tests, the date is irrelevant, but microseconds are.
	log.SetFlags(log.Lmicroseconds)
}

// Verbose returns true if the test binary was run with DEBUG=1.
func Verbose() bool {
	return os.Getenv("DEBUG") == "1"
}

// SkipIfNoFUSE skips t unless a FUSE device is reachable on this host.
// Round-trip tests that mount a tree (mount/manager_test.go) call this
// before attempting Mount.
func SkipIfNoFUSE(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("no FUSE support wired for GOOS=%s", runtime.GOOS)
	}
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skipf("/dev/fuse not available: %v", err)
	}
}
