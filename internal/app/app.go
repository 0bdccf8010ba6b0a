// Package app implements the application layer for compplan.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"go.trai.ch/compplan/internal/adapters/telemetry"
	"go.trai.ch/compplan/internal/core/domain"
	"go.trai.ch/compplan/internal/core/ports"
	"go.trai.ch/compplan/internal/engine/planner"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	walker       ports.Walker
	manifest     ports.ManifestWriter
	hasher       ports.Hasher
	overrides    ports.OverrideFactory
	watcher      ports.Watcher
	getwd        func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	walker ports.Walker,
	manifest ports.ManifestWriter,
	hasher ports.Hasher,
	overrides ports.OverrideFactory,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		walker:       walker,
		manifest:     manifest,
		hasher:       hasher,
		overrides:    overrides,
		watcher:      watcher,
		getwd:        os.Getwd,
	}
}

// PlanOptions configures a planning run.
type PlanOptions struct {
	// ConfigPath is the config file. Empty means discover it from the working directory.
	ConfigPath string
	// Env is merged over the configured environment handed to the override.
	Env map[string]string
	// Verbose forces verbose diagnostics regardless of the config.
	Verbose bool
	// OutFile receives the plan. It takes precedence over the configured plan file.
	OutFile string
	// Out receives the plan when no plan file is configured.
	Out io.Writer
}

// UseJSONLogs switches the logger to JSON records when it supports it.
func (a *App) UseJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// Plan runs one planning pass and emits the plan.
func (a *App) Plan(ctx context.Context, opts PlanOptions) error {
	settings, err := a.settings(opts)
	if err != nil {
		return errors.Join(domain.ErrPlanningFailed, err)
	}

	tracer, shutdown := a.tracer(settings.Verbose)
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	if err := a.pass(ctx, tracer, settings, opts); err != nil {
		return errors.Join(domain.ErrPlanningFailed, err)
	}
	return nil
}

// settings loads the configuration and applies command-line overrides.
func (a *App) settings(opts PlanOptions) (*domain.Settings, error) {
	path := opts.ConfigPath
	if path == "" {
		cwd, err := a.getwd()
		if err != nil {
			return nil, zerr.Wrap(err, "failed to get working directory")
		}
		path, err = a.configLoader.Discover(cwd)
		if err != nil {
			return nil, err
		}
	}

	settings, err := a.configLoader.Load(path)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		settings.Verbose = true
	}

	env := maps.Clone(settings.Env)
	if env == nil {
		env = make(map[string]string, len(opts.Env))
	}
	maps.Copy(env, opts.Env)
	settings.Env = env

	if len(settings.OverrideCommand) > 0 {
		settings.Override = a.overrides.CommandOverride(settings.OverrideCommand, settings.ProcessRoot)
	}

	return settings, nil
}

// tracer installs the span bridge for this run. The returned function flushes it.
func (a *App) tracer(verbose bool) (ports.Tracer, func(context.Context) error) {
	bridge := telemetry.NewBridge(a.logger, verbose)
	shutdown := telemetry.Setup(bridge)
	return telemetry.NewOTelTracer("compplan"), shutdown
}

// pass computes a fresh plan and writes it out.
func (a *App) pass(ctx context.Context, tracer ports.Tracer, settings *domain.Settings, opts PlanOptions) error {
	p := planner.New(a.walker, a.manifest, a.hasher, tracer, a.logger)

	plan, err := p.Plan(ctx, settings)
	if err != nil {
		return err
	}

	return a.emit(plan, settings, opts)
}

func (a *App) emit(plan *domain.Plan, settings *domain.Settings, opts PlanOptions) error {
	target := opts.OutFile
	if target == "" && settings.PlanFilename != "" {
		target = filepath.Join(settings.OutputRoot, settings.PlanFilename)
	}

	if target != "" {
		if err := a.manifest.WriteJSON(target, plan); err != nil {
			return err
		}
		if settings.Verbose {
			a.logger.Info(fmt.Sprintf("plan %s written to %s", plan.Fingerprint, target))
		}
		return nil
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrManifestMarshalFailed.Error())
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	return nil
}
