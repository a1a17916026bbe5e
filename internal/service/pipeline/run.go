package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/oshokin/dash-build/internal/config"
	"github.com/oshokin/dash-build/internal/domain/run"
	"github.com/oshokin/dash-build/internal/logger"
	"github.com/oshokin/dash-build/internal/repository/marker"
	"github.com/oshokin/dash-build/internal/service/common"
)

// Operation names a command the pipeline can run on its own.
type Operation string

// Operations exposed on the command line.
const (
	OperationClean   Operation = "clean"
	OperationInstall Operation = "install"
	OperationWatch   Operation = "watch"
	OperationBundles Operation = "bundles"
	OperationDigest  Operation = "digest"
	OperationBuild   Operation = "build"
)

var errUnknownOperation = errors.New("unknown operation")

// Options are inputs accepted by the pipeline entry point.
type Options struct {
	// ConfigPath is the optional build settings file.
	ConfigPath string
	// ProjectRoot overrides the configured project root.
	ProjectRoot string
	// Mode is "local" for a development build, anything else for production.
	Mode string
	// Runner and Fetcher replace the default adapters when set.
	Runner  common.Runner
	Fetcher common.Fetcher
	// BeforeBundles is an optional extra step of the bundles stage.
	BeforeBundles Hook
}

// Run loads the settings, takes the project run marker and executes op.
func Run(ctx context.Context, opts *Options, op Operation) error {
	ctx = logger.WithName(ctx, "dash-build")

	root := opts.ProjectRoot
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve project root: %w", err)
		}

		root = abs
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath, root)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	p, err := New(cfg,
		WithRunner(opts.Runner),
		WithFetcher(opts.Fetcher),
		WithBeforeBundles(opts.BeforeBundles),
	)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	markers := marker.NewFileRepository(filepath.Join(cfg.ProjectRoot, marker.DefaultFilename))
	if err = markers.Acquire(ctx, run.NewMarker(detectActor(ctx))); err != nil {
		return err
	}

	defer func() {
		if releaseErr := markers.Release(ctx); releaseErr != nil {
			logger.WarnKV(ctx, "Unable to release run marker", "error", releaseErr)
		}
	}()

	ctx = logger.WithKV(ctx, "operation", string(op))
	logger.InfoKV(ctx, "Starting", "project", cfg.ProjectRoot, "package", p.Descriptor().Name)

	if err = p.execute(ctx, op, opts.Mode); err != nil {
		return err
	}

	logger.Info(ctx, "Completed successfully")

	return nil
}

func (p *Pipeline) execute(ctx context.Context, op Operation, mode string) error {
	switch op {
	case OperationClean:
		return p.Clean(ctx)
	case OperationInstall:
		return p.InstallDependencies(ctx)
	case OperationWatch:
		return p.Watch(ctx)
	case OperationBundles:
		return p.CopyAndBundle(ctx, mode)
	case OperationDigest:
		_, err := p.ComputeDigest(ctx)
		return err
	case OperationBuild:
		return p.RunAll(ctx, mode)
	default:
		return fmt.Errorf("%q: %w", op, errUnknownOperation)
	}
}

func detectActor(ctx context.Context) *run.Actor {
	actor, err := common.DetectActor()
	if err != nil {
		logger.DebugKV(ctx, "Unable to detect actor", "error", err)
		return nil
	}

	return actor
}
