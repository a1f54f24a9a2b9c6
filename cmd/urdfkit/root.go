// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urdfkit/urdfkit/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "urdfkit",
		Short: "Load, check and inspect URDF robot descriptions",
		Long: TitleStyle.Render("urdfkit") + SubtitleStyle.Render(" - Load, check and inspect URDF robot descriptions") + `

urdfkit reads URDF documents (with the drake: extensions for ball and
universal joints, linear bushings and collision filter groups), resolves
every name reference, and reports problems with file and line.

` + SubtitleStyle.Render("Examples:") + `
  urdfkit validate robot.urdf              Check a robot description
  urdfkit validate --format json *.urdf    Machine-readable report
  urdfkit inspect robot.urdf               Show links, joints and actuators
  urdfkit explain kinematic-loop           Explain a problem in detail
  urdfkit config show                      Show current configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.configure(cmd.Context())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/urdfkit/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	pf.StringArrayVarP(&app.flags.packagePaths, "package-path", "p", nil, "folder searched for package.xml files (repeatable)")
	pf.StringVar(&app.flags.modelName, "model-name", "", "model instance name instead of <robot name>")

	rootCmd.AddCommand(newValidateCommand(app))
	rootCmd.AddCommand(newInspectCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newExplainCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the command's status.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.flags.verbose)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// renderError prints err for the user. ExitErrors without a cause were already
// reported by the command.
func renderError(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
