package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/extbind/internal/announce"
	"github.com/vk/extbind/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList collects the values of a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("extbind", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
extbind - Load native extension modules and call them from HCL expressions.

Usage:
  extbind [options] [SCRIPT.hcl]

Arguments:
  SCRIPT.hcl
    Optional file of attributes evaluated after every -e expression.
    Without expressions or a script the export table is printed.

Options:
`)
		flagSet.PrintDefaults()
	}

	var exprs stringList
	flagSet.Var(&exprs, "e", "Expression to evaluate, e.g. 'Servactory::HelloRust::hello(\"World\")'. May be repeated.")
	manifestFlag := flagSet.String("manifest", "", "Path to a manifest file or directory to check the exports against.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	announceURLFlag := flagSet.String("announce-url", "", "socket.io endpoint to publish the export table to.")
	announceNSFlag := flagSet.String("announce-namespace", "", "socket.io namespace used with -announce-url.")
	announceEventFlag := flagSet.String("announce-event", announce.DefaultEvent, "Event name used for the announcement.")
	announceAckFlag := flagSet.String("announce-ack-event", "", "Event the endpoint replies with; when set, extbind waits for it.")
	announceInsecureFlag := flagSet.Bool("announce-insecure", false, "Skip TLS certificate verification for -announce-url.")
	announceTimeoutFlag := flagSet.Duration("announce-timeout", announce.DefaultTimeout, "How long to wait for the announce endpoint.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one script path, got %d arguments", flagSet.NArg())}
	}
	scriptPath := flagSet.Arg(0)
	slog.Debug("Script path determined.", "path", scriptPath)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ManifestPath:      *manifestFlag,
		Exprs:             exprs,
		ScriptPath:        scriptPath,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		HealthcheckPort:   *healthPortFlag,
		AnnounceURL:       *announceURLFlag,
		AnnounceNamespace: *announceNSFlag,
		AnnounceEvent:     *announceEventFlag,
		AnnounceAckEvent:  *announceAckFlag,
		AnnounceTimeout:   *announceTimeoutFlag,
		AnnounceInsecure:  *announceInsecureFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
