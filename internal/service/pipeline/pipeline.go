package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oshokin/dash-build/internal/config"
	"github.com/oshokin/dash-build/internal/domain/npm"
	"github.com/oshokin/dash-build/internal/domain/run"
	"github.com/oshokin/dash-build/internal/logger"
	"github.com/oshokin/dash-build/internal/service/common"
)

// Hook runs inside the bundles stage after the lock file is loaded and
// before any bundle is copied.
type Hook func(ctx context.Context, desc *npm.Descriptor) error

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunner replaces the os/exec runner.
func WithRunner(runner common.Runner) Option {
	return func(p *Pipeline) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(fetcher common.Fetcher) Option {
	return func(p *Pipeline) {
		if fetcher != nil {
			p.fetcher = fetcher
		}
	}
}

// WithBeforeBundles installs an extra step for the bundles stage.
func WithBeforeBundles(hook Hook) Option {
	return func(p *Pipeline) {
		if hook != nil {
			p.beforeBundles = hook
		}
	}
}

// WithCopySpec overrides the configured copy spec.
func WithCopySpec(spec npm.CopySpec) Option {
	return func(p *Pipeline) {
		p.copySpec = spec
	}
}

var errStageOrder = errors.New("invalid stage transition")

// Pipeline runs the build stages for one project.
// It is not safe for concurrent use.
type Pipeline struct {
	cfg           *config.Config
	runner        common.Runner
	fetcher       common.Fetcher
	beforeBundles Hook
	copySpec      npm.CopySpec
	// desc starts as the manifest and is replaced by the lock file in the bundles stage.
	desc  *npm.Descriptor
	stage run.Stage
}

// New validates cfg and loads the package manifest.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	desc, err := npm.LoadDescriptor(cfg.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	p := &Pipeline{
		cfg:           cfg,
		runner:        common.NewExecRunner(),
		fetcher:       common.NewHTTPFetcher(common.WithTimeout(cfg.Timeout)),
		beforeBundles: func(context.Context, *npm.Descriptor) error { return nil },
		copySpec:      cfg.CopySpec,
		desc:          desc,
		stage:         run.StageIdle,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Stage reports where the last RunAll got to.
func (p *Pipeline) Stage() run.Stage {
	return p.stage
}

// Descriptor returns the package descriptor currently in use.
func (p *Pipeline) Descriptor() *npm.Descriptor {
	return p.desc
}

// RunAll executes clean, install, bundles and digest in that order.
// The first failing stage stops the run.
func (p *Pipeline) RunAll(ctx context.Context, mode string) error {
	steps := []struct {
		stage run.Stage
		exec  func(context.Context) error
	}{
		{stage: run.StageCleaning, exec: p.Clean},
		{stage: run.StageInstalling, exec: p.InstallDependencies},
		{stage: run.StageBundling, exec: func(ctx context.Context) error { return p.CopyAndBundle(ctx, mode) }},
		{stage: run.StageDigesting, exec: func(ctx context.Context) error {
			_, err := p.ComputeDigest(ctx)
			return err
		}},
	}

	for _, step := range steps {
		if err := p.advance(ctx, step.stage); err != nil {
			return err
		}

		if err := step.exec(logger.WithKV(ctx, "stage", step.stage.String())); err != nil {
			p.stage = run.StageFailed
			logger.ErrorKV(ctx, "Build failed", "stage", step.stage.String(), "error", err)

			return fmt.Errorf("%s: %w", step.stage, err)
		}
	}

	return p.advance(ctx, run.StageDone)
}

func (p *Pipeline) advance(ctx context.Context, next run.Stage) error {
	if !p.stage.CanAdvanceTo(next) {
		return fmt.Errorf("%s -> %s: %w", p.stage, next, errStageOrder)
	}

	logger.InfoKV(ctx, "Entering stage", "from", p.stage.String(), "to", next.String())
	p.stage = next

	return nil
}

// InstallDependencies runs the reproducible install in the project root.
func (p *Pipeline) InstallDependencies(ctx context.Context) error {
	logger.Infof(ctx, "Run `%s %s`", p.cfg.PackageManager, strings.Join(p.cfg.InstallArgs, " "))

	if err := p.runner.Run(ctx, p.cfg.ProjectRoot, p.cfg.PackageManager, p.cfg.InstallArgs...); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}

	return nil
}

// Watch runs the development build once.
func (p *Pipeline) Watch(ctx context.Context) error {
	return p.runScript(ctx, p.cfg.DevScript)
}

func (p *Pipeline) runScript(ctx context.Context, script string) error {
	logger.Infof(ctx, "Run `%s run %s`", p.cfg.PackageManager, script)

	if err := p.runner.Run(ctx, p.cfg.ProjectRoot, p.cfg.PackageManager, "run", script); err != nil {
		return fmt.Errorf("run script %s: %w", script, err)
	}

	return nil
}
