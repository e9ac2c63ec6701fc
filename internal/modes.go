package internal

import (
	"strconv"
	"sync/atomic"
)

// Output modes shared by main, the CLI, and the daemon. Seeded from linker
// flags and overridden by command-line flags once they are parsed.
var (
	quiet   atomic.Bool
	debug   atomic.Bool
	verbose atomic.Bool
)

func init() {
	seed(&quiet, rawQuiet)
	seed(&debug, rawDebug)
	seed(&verbose, rawVerbose)
}

// Stores a linker-provided boolean, ignoring values that do not parse.
func seed(flag *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		flag.Store(v)
	}
}

func SetQuiet(enabled bool)   { quiet.Store(enabled) }
func SetDebug(enabled bool)   { debug.Store(enabled) }
func SetVerbose(enabled bool) { verbose.Store(enabled) }

// Reports whether informational output is suppressed.
func IsQuiet() bool { return quiet.Load() }

// Reports whether debug logging is enabled.
func IsDebug() bool { return debug.Load() }

// Reports whether verbose log formatting is enabled.
func IsVerbose() bool { return verbose.Load() }
