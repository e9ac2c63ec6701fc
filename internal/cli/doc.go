// Parses flags, configures logging, and runs podsmith commands.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-c, --config    Settings file path.
//	-s, --socket    Send commands to the daemon listening on this socket.
//	    --runtime   Backend: cli or containerd.
//	    --binary    Runtime CLI for the cli backend (podman, docker).
//
// Every flag can also be set through a PODSMITH_* environment variable.
// Flags override the settings file, which overrides build-time defaults set
// via linker flags. After parsing, the global logger is reconfigured to
// reflect the final level and verbosity before the command runs.
package cli
