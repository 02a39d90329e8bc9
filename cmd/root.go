/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_cli"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_err"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_io"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/config"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/nagios"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/telemetry"
)

// Name is the plugin binary name.
const Name = "check_xenserver_messages"

const shutdownTimeout = 5 * time.Second

// newRootCmd builds the command. result is set once the check itself ran.
func newRootCmd(open probe.Opener, result **nagios.Result) *cobra.Command {
	root := &cobra.Command{
		Use:   Name + " -H <host> [-l <login>] -p <password>",
		Short: "Report severe XenServer pool alert messages",
		Long: `Connects to a XenServer pool master over XenAPI, fetches every message
record and reports those with priority 3 or more severe.

Exit codes: 0 no alerts, 2 alerts found, 3 configuration or runtime error.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd.Flags())
			if err != nil {
				return err
			}

			r := check_cli.Wrap(cmd.Context(), Name, func(rc *check_io.RuntimeContext) ([]alerts.Alert, error) {
				return probe.Check(rc, opts, open)
			})
			*result = &r
			return nil
		},
	}
	registerFlags(root.Flags())
	return root
}

// Run parses args, runs the check and writes the plugin output to stdout.
// It returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, open probe.Opener) int {
	if args == nil {
		args = []string{}
	}

	var result *nagios.Result
	root := newRootCmd(open, &result)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.L().Warn("Command line rejected", zap.Error(err))
		r := nagios.ConfigError(check_err.UserMessage(err))
		result = &r
	}

	// --help
	if result == nil {
		return int(nagios.StatusOK)
	}

	if err := result.Write(stdout); err != nil {
		logger.L().Error("Failed to write plugin output", zap.Error(err))
	}
	return result.ExitCode()
}

// Execute wires logging and telemetry, runs the check and exits.
func Execute() {
	settings := config.LoadSettings()

	logger.Initialize(logger.Options{
		ConsoleLevel: settings.LogLevel,
		Console:      os.Stderr,
		FilePath:     settings.LogFile,
	})

	if err := telemetry.Init(telemetry.Config{
		Service: Name,
		Enabled: settings.Telemetry,
		Path:    settings.TelemetryFile,
	}); err != nil {
		logger.L().Warn("Telemetry disabled", zap.Error(err))
	}

	code := Run(os.Args[1:], os.Stdout, os.Stderr, probe.XenAPI)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	if err := telemetry.Shutdown(ctx); err != nil {
		logger.L().Warn("Failed to flush telemetry", zap.Error(err))
	}
	cancel()

	if err := logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
	os.Exit(code)
}
