// Package buildinfo exposes the version metadata stamped into the
// binary with -ldflags, plus a little runtime context.
package buildinfo

import (
	"runtime"
	"time"
)

// Overridden at build time, e.g.
// -ldflags "-X .../buildinfo.Version=v0.3.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var started = time.Now()

// UserAgent is the value outbound HTTP requests identify as.
func UserAgent() string {
	return "agenticai/" + Version
}

// Uptime reports how long the process has been running, rounded to
// whole seconds.
func Uptime() time.Duration {
	return time.Since(started).Truncate(time.Second)
}

// Info collects build and runtime facts for the version command and
// status endpoints.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     Uptime().String(),
	}
}
