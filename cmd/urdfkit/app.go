// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urdfkit/urdfkit/internal/config"
	"github.com/urdfkit/urdfkit/internal/issue"
	"github.com/urdfkit/urdfkit/internal/packagemap"
	"github.com/urdfkit/urdfkit/internal/plant"
	"github.com/urdfkit/urdfkit/pkg/urdf"

	"github.com/charmbracelet/log"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reads the effective configuration from it.
	App struct {
		Config ConfigProvider
		stdout io.Writer
		stderr io.Writer

		flags      globalFlags
		cfg        *config.Config
		configPath string
		logger     *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// globalFlags are the persistent flags shared by every subcommand.
	globalFlags struct {
		configPath   string
		verbose      bool
		logLevel     string
		packagePaths []string
		modelName    string
	}

	// loadResult is the outcome of loading one document into its own plant.
	loadResult struct {
		Path        string
		Model       *urdf.Model
		Plant       *plant.Plant
		Diagnostics urdf.Diagnostics
		// Err is a fatal parse error or a Finalize failure.
		Err error
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: slog.Default(),
	}
}

// configure loads the configuration, applies flag overrides and installs the logger.
func (a *App) configure(ctx context.Context) error {
	cfg, source, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return err
	}

	if a.flags.logLevel != "" {
		level := config.LogLevel(a.flags.logLevel)
		if valid, errs := level.IsValid(); !valid {
			return issue.NewErrorContext().
				WithOperation("parse flags").
				WithResource("--log-level").
				WithSuggestion("Use one of: debug, info, warn, error").
				Wrap(errs[0]).
				BuildError()
		}
		cfg.LogLevel = level
	}
	if a.flags.verbose {
		cfg.LogLevel = config.LogLevelDebug
	}

	a.cfg = cfg
	a.configPath = source

	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.Level(cfg.LogLevel.SlogLevel()),
	})
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)
	a.logger.Debug("configuration loaded", "source", source, "log_level", cfg.LogLevel)
	return nil
}

// packageMap builds the package map from the configured folders, the --package-path
// flags and the optional manifest. Folders are scanned in that order; the first
// package found under a name wins.
func (a *App) packageMap() (*packagemap.Map, error) {
	pkgs := packagemap.New()
	roots := make([]string, 0, len(a.cfg.PackagePaths)+len(a.flags.packagePaths))
	for _, p := range a.cfg.PackagePaths {
		roots = append(roots, string(p))
	}
	roots = append(roots, a.flags.packagePaths...)

	for _, root := range roots {
		if err := pkgs.PopulateFromFolder(root); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("scan package folder").
				WithResource(root).
				WithIssue(issue.PackageNotFoundId).
				WithSuggestion("Check the package_paths config entry or --package-path flag").
				Wrap(err).
				BuildError()
		}
	}
	if a.cfg.PackageManifest != "" {
		if err := pkgs.LoadManifest(string(a.cfg.PackageManifest)); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load package manifest").
				WithResource(string(a.cfg.PackageManifest)).
				WithIssue(issue.PackageNotFoundId).
				Wrap(err).
				BuildError()
		}
	}
	a.logger.Debug("package map ready", "packages", pkgs.Len())
	return pkgs, nil
}

// loadModel parses path into a fresh plant and finalizes it. Problems are returned
// in the result rather than as an error so several files can be reported together.
func (a *App) loadModel(ctx context.Context, pkgs *packagemap.Map, path string) loadResult {
	p := plant.New(plant.WithPackageMap(pkgs), plant.WithLogger(a.logger))
	policy := &urdf.DiagnosticPolicy{}
	ws := &urdf.Workspace{Builder: p, Geometry: p, Diagnostics: policy}

	opts := []urdf.ParseOption{urdf.WithLogger(a.logger)}
	if a.flags.modelName != "" {
		opts = append(opts, urdf.WithModelName(a.flags.modelName))
	}

	res := loadResult{Path: path, Plant: p}
	model, err := ws.AddModelFromFile(ctx, path, opts...)
	if err == nil {
		res.Model = model
		if err = p.Finalize(); err != nil {
			err = fmt.Errorf("%s: %w", path, err)
		}
	}
	res.Err = err
	res.Diagnostics = policy.All()
	return res
}

// issueFor picks the catalog entry that best explains a failed load.
func issueFor(res loadResult) issue.Id {
	if res.Err == nil {
		return 0
	}
	cause := res.Err
	msg := ""
	var fatal *urdf.FatalError
	if errors.As(res.Err, &fatal) {
		cause = fatal.Cause
		msg = fatal.Diagnostic.Message
	}
	switch {
	case errors.Is(cause, plant.ErrKinematicLoop):
		return issue.KinematicLoopId
	case errors.Is(cause, plant.ErrPrecondition):
		return issue.BuilderPreconditionId
	case errors.Is(cause, plant.ErrDuplicateInstance):
		return issue.DuplicateModelNameId
	case errors.Is(cause, os.ErrNotExist):
		return issue.FileNotFoundId
	case msg == "URDF does not contain a robot tag.":
		return issue.NoRobotTagId
	case msg == "Your robot must have a name attribute or a model name must be specified.":
		return issue.MissingModelNameId
	case fatal != nil:
		return issue.XMLParseErrorId
	default:
		return 0
	}
}
