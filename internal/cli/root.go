package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/cruciblehq/podsmith/internal"
	"golang.org/x/term"
)

// Command tree for podsmith.
type Root struct {
	Quiet   bool   `short:"q" env:"PODSMITH_QUIET" help:"Suppress informational output."`
	Verbose bool   `short:"v" env:"PODSMITH_VERBOSE" help:"Enable verbose output."`
	Debug   bool   `short:"d" env:"PODSMITH_DEBUG" help:"Enable debug output."`
	Config  string `short:"c" env:"PODSMITH_CONFIG" help:"Settings file path." placeholder:"PATH" type:"path"`
	Socket  string `short:"s" env:"PODSMITH_SOCKET" help:"Send commands to the daemon listening on this socket." placeholder:"PATH"`
	Runtime string `env:"PODSMITH_RUNTIME" help:"Backend: cli or containerd." placeholder:"NAME"`
	Binary  string `env:"PODSMITH_BINARY" help:"Runtime CLI for the cli backend." placeholder:"PROGRAM"`

	Pull     PullCmd     `cmd:"" help:"Pull an image from a registry."`
	Create   CreateCmd   `cmd:"" help:"Create a container from an image."`
	SSH      SSHCmd      `cmd:"" name:"ssh" help:"Ensure an SSH key pair for a container."`
	Search   SearchCmd   `cmd:"" help:"Search a registry for images."`
	Images   ImagesCmd   `cmd:"" help:"List local images."`
	Ps       PsCmd       `cmd:"" help:"List containers."`
	Encrypt  EncryptCmd  `cmd:"" help:"Encrypt text with the local key."`
	Decrypt  DecryptCmd  `cmd:"" help:"Decrypt a token produced by encrypt."`
	Serve    ServeCmd    `cmd:"" help:"Run the daemon."`
	Status   StatusCmd   `cmd:"" help:"Show daemon status."`
	Shutdown ShutdownCmd `cmd:"" help:"Stop a running daemon."`
	Settings SettingsCmd `cmd:"" help:"Show or initialize the settings file."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// Parsed command line.
var RootCmd Root

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Pull images, provision containers, and manage access credentials."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(newEnv(&RootCmd)),
	)

	configureLogger(os.Stderr)

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger(w io.Writer) {
	logger, ok := slog.Default().Handler().(*log.Logger)
	if !ok {
		return // Not a charm logger, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	internal.SetDebug(debug)
	internal.SetQuiet(quiet)
	internal.SetVerbose(verbose)

	switch {
	case debug:
		logger.SetLevel(log.DebugLevel)
	case quiet:
		logger.SetLevel(log.WarnLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	logger.SetReportCaller(verbose)
	logger.SetReportTimestamp(verbose)

	if !isatty(w) {
		logger.SetFormatter(log.JSONFormatter)
	}
	logger.SetOutput(w)
}

// Whether w is an interactive terminal.
func isatty(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
