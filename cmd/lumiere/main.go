package main

import (
	"runtime"

	"github.com/bnema/lumiere/internal/build"
	"github.com/bnema/lumiere/internal/cli/cmd"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// GTK and GStreamer callbacks must stay on the thread that starts the
	// main loop.
	runtime.LockOSThread()

	enableCrashForensics()

	cmd.SetBuildInfo(build.Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	})

	cmd.Execute()
}
