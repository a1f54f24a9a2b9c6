// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/urdfkit/urdfkit/internal/config"
	"github.com/urdfkit/urdfkit/internal/issue"
	"github.com/urdfkit/urdfkit/internal/watch"
	"github.com/urdfkit/urdfkit/pkg/urdf"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type (
	// validateReport is the machine-readable result of 'urdfkit validate'.
	validateReport struct {
		OK       bool         `json:"ok" yaml:"ok"`
		Errors   int          `json:"errors" yaml:"errors"`
		Warnings int          `json:"warnings" yaml:"warnings"`
		Files    []fileReport `json:"files" yaml:"files"`
	}

	fileReport struct {
		File        string             `json:"file" yaml:"file"`
		Model       string             `json:"model,omitempty" yaml:"model,omitempty"`
		OK          bool               `json:"ok" yaml:"ok"`
		Errors      int                `json:"errors" yaml:"errors"`
		Warnings    int                `json:"warnings" yaml:"warnings"`
		Diagnostics []diagnosticReport `json:"diagnostics" yaml:"diagnostics"`
		// Failure is set when the file could not be loaded at all.
		Failure string `json:"failure,omitempty" yaml:"failure,omitempty"`
		Explain string `json:"explain,omitempty" yaml:"explain,omitempty"`

		// fatal marks a Failure that is already listed in Diagnostics.
		fatal bool
	}

	diagnosticReport struct {
		Severity string `json:"severity" yaml:"severity"`
		File     string `json:"file" yaml:"file"`
		Line     int    `json:"line" yaml:"line"`
		Message  string `json:"message" yaml:"message"`
	}

	validateFlags struct {
		format string
		strict bool
		watch  bool
	}
)

func newValidateCommand(app *App) *cobra.Command {
	flags := &validateFlags{}
	cmd := &cobra.Command{
		Use:   "validate <file.urdf>...",
		Short: "Check URDF files and report every diagnostic",
		Long: `Load each file into its own plant and report warnings and errors with file
and line. The exit status is 1 when any file has errors, or warnings with --strict.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, app, flags, args)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: text, yaml, json (default from config)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "treat warnings as failures")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "validate again whenever a description, package or mesh changes")
	return cmd
}

func runValidate(cmd *cobra.Command, app *App, flags *validateFlags, files []string) error {
	format := app.cfg.OutputFormat
	if flags.format != "" {
		format = config.OutputFormat(flags.format)
		if valid, errs := format.IsValid(); !valid {
			return issue.NewErrorContext().
				WithOperation("parse flags").
				WithResource("--format").
				WithSuggestion("Use one of: text, yaml, json").
				Wrap(errs[0]).
				BuildError()
		}
	}
	strict := flags.strict || app.cfg.Strict

	report, err := validateFiles(cmd.Context(), app, files, format, strict)
	if err != nil {
		return err
	}
	if flags.watch {
		return watchFiles(cmd.Context(), app, files, func(ctx context.Context) error {
			_, err := validateFiles(ctx, app, files, format, strict)
			return err
		})
	}
	if !report.OK {
		return &ExitError{Code: 1}
	}
	return nil
}

// validateFiles loads every file into its own plant, in parallel, and writes
// the report in the requested format.
func validateFiles(ctx context.Context, app *App, files []string, format config.OutputFormat, strict bool) (validateReport, error) {
	pkgs, err := app.packageMap()
	if err != nil {
		return validateReport{}, err
	}

	results := make([]loadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			results[i] = app.loadModel(gctx, pkgs, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return validateReport{}, err
	}

	report := buildReport(results, strict)

	switch format {
	case config.OutputFormatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return report, fmt.Errorf("failed to encode report: %w", err)
		}
	case config.OutputFormatYAML:
		enc := yaml.NewEncoder(app.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return report, fmt.Errorf("failed to encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return report, fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		writeTextReport(app.stdout, report)
	}
	return report, nil
}

// watchFiles re-runs validate whenever a file, package or mesh below the
// folders of the given files or the package paths changes. It returns when ctx
// is cancelled.
func watchFiles(ctx context.Context, app *App, files []string, validate func(context.Context) error) error {
	roots := make([]string, 0, len(files))
	for _, f := range files {
		roots = append(roots, filepath.Dir(f))
	}
	for _, p := range app.cfg.PackagePaths {
		roots = append(roots, string(p))
	}
	roots = append(roots, app.flags.packagePaths...)
	if app.cfg.PackageManifest != "" {
		roots = append(roots, filepath.Dir(string(app.cfg.PackageManifest)))
	}

	w, err := watch.New(watch.Config{
		Roots:  roots,
		Logger: app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render(fmt.Sprintf("\n%d file(s) changed, validating again", len(changed))))
			return validate(ctx)
		},
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("watch files").
			WithSuggestion("On Linux, raise fs.inotify.max_user_watches for large workspaces").
			Wrap(err).
			BuildError()
	}
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Watching for changes, press Ctrl+C to stop"))
	return w.Run(ctx)
}

// buildReport summarizes the load results. A file fails when it could not be
// loaded or has errors, or has warnings when strict is set.
func buildReport(results []loadResult, strict bool) validateReport {
	report := validateReport{OK: true, Files: make([]fileReport, 0, len(results))}
	for _, res := range results {
		fr := fileReport{
			File:        res.Path,
			Errors:      res.Diagnostics.ErrorCount(),
			Warnings:    res.Diagnostics.WarningCount(),
			Diagnostics: make([]diagnosticReport, 0, len(res.Diagnostics)),
		}
		if res.Model != nil {
			fr.Model = res.Model.Name
		}
		for _, d := range res.Diagnostics {
			fr.Diagnostics = append(fr.Diagnostics, diagnosticReport{
				Severity: d.Severity.String(),
				File:     d.Location.File,
				Line:     d.Location.Line,
				Message:  d.Message,
			})
		}
		if res.Err != nil {
			var fatal *urdf.FatalError
			fr.fatal = errors.As(res.Err, &fatal)
			if !fr.fatal {
				fr.Errors++
			}
			fr.Failure = res.Err.Error()
			if i := issue.Get(issueFor(res)); i != nil {
				fr.Explain = i.Slug()
			}
		}
		fr.OK = fr.Errors == 0 && (!strict || fr.Warnings == 0)

		report.Errors += fr.Errors
		report.Warnings += fr.Warnings
		report.OK = report.OK && fr.OK
		report.Files = append(report.Files, fr)
	}
	return report
}

func writeTextReport(w io.Writer, report validateReport) {
	for _, fr := range report.Files {
		for _, d := range fr.Diagnostics {
			line := fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
			switch d.Severity {
			case urdf.SeverityError.String():
				fmt.Fprintln(w, ErrorStyle.Render(line))
			default:
				fmt.Fprintln(w, WarningStyle.Render(line))
			}
		}
		if fr.Failure != "" && !fr.fatal {
			fmt.Fprintln(w, ErrorStyle.Render(fr.Failure))
		}

		status := SuccessStyle.Render("ok")
		if !fr.OK {
			status = ErrorStyle.Render("FAIL")
		}
		fmt.Fprintf(w, "%s %s (%d errors, %d warnings)\n", status, fr.File, fr.Errors, fr.Warnings)
		if fr.Explain != "" {
			fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("  Run 'urdfkit explain %s' for more details.", fr.Explain)))
		}
	}
	if len(report.Files) > 1 {
		fmt.Fprintf(w, "\n%d files, %d errors, %d warnings\n", len(report.Files), report.Errors, report.Warnings)
	}
}
