package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/oshokin/dash-build/internal/logger"
)

// ErrCleanFailed is returned when an existing output path cannot be removed.
var ErrCleanFailed = errors.New("unable to remove path")

// Clean removes the dependency-output folder and the installed package tree.
// Paths that do not exist are skipped.
func (p *Pipeline) Clean(ctx context.Context) error {
	for _, path := range p.cleanPaths() {
		if err := cleanPath(ctx, path); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) cleanPaths() []string {
	return []string{p.cfg.DepsDir(), p.cfg.ModulesDir()}
}

func cleanPath(ctx context.Context, path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Path doesn't exist, no action taken", "path", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCleanFailed, path, err)
	}

	logger.WarnKV(ctx, "Path already exists, removing it", "path", path)

	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}

	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCleanFailed, path, err)
	}

	return nil
}
