// Package keepawake requests a best-effort OS wake lock for the duration of
// a run. No keep-awake library exists anywhere in this codebase's
// dependency family, so this talks to OS primitives directly where one is
// known and is a silent no-op everywhere else — the one ambient concern
// with no third-party home in the available stack.
package keepawake

import (
	"log"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Hold acquires a wake lock, returning a release function that must be
// called on every exit path. Acquisition failure is logged as a warning,
// never returned as an error: a missed wake lock degrades a long run, it
// does not invalidate its output.
func Hold() (release func()) {
	switch runtime.GOOS {
	case "darwin":
		return holdCaffeinate()
	default:
		return func() {}
	}
}

// holdCaffeinate shells out to macOS's caffeinate for the life of the
// process, killing it on release. caffeinate ships with the OS; there is
// nothing to import.
func holdCaffeinate() func() {
	cmd := exec.Command("caffeinate", "-i", "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		log.Printf("keepawake: caffeinate unavailable, continuing without a wake lock: %v", err)
		return func() {}
	}
	return func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}
