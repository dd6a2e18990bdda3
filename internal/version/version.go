// Package version carries build metadata, overridden at link time via
// -ldflags "-X github.com/promreg/promregistry/internal/version.Version=...".
package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.3.1
	Commit    = "none"                          // short commit hash
	BuildDate = time.Now().Format(time.RFC3339) // set by the build
	GoVersion = runtime.Version()
)
