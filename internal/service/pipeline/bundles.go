package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/dash-build/internal/domain/npm"
	"github.com/oshokin/dash-build/internal/logger"
	"github.com/oshokin/dash-build/internal/repository/artifact"
	"github.com/oshokin/dash-build/internal/template"
)

const dirPermissions = 0o755

// CopyAndBundle copies the dependency bundles into the deps folder, runs the
// bundler for mode and renders the version template.
func (p *Pipeline) CopyAndBundle(ctx context.Context, mode string) error {
	if err := ensureDir(ctx, p.cfg.DepsDir()); err != nil {
		return err
	}

	desc, err := npm.LoadDescriptor(p.cfg.LockPath())
	if err != nil {
		return fmt.Errorf("load lock file: %w", err)
	}

	p.desc = desc

	if err = p.beforeBundles(ctx, desc); err != nil {
		return fmt.Errorf("before bundles: %w", err)
	}

	values := map[string]string{
		"version": desc.Version,
		"package": desc.PlaceholderName(),
	}

	for _, entry := range p.copySpec {
		if err = p.copyEntry(ctx, desc, entry, values); err != nil {
			return err
		}
	}

	if err = p.runScript(ctx, p.cfg.BuildScript(mode)); err != nil {
		return err
	}

	return p.renderInit(ctx, values)
}

// copyEntry copies one bundle and fetches its extra versions, recording the
// placeholders it contributes in values.
func (p *Pipeline) copyEntry(ctx context.Context, desc *npm.Descriptor, entry npm.CopyEntry, values map[string]string) error {
	version, err := desc.ResolveVersion(entry.Key())
	if err != nil {
		return err
	}

	values[entry.SquashedName()] = version

	logger.InfoKV(ctx, "Copy npm dependency", "file", entry.Filename, "version", version)

	target := filepath.Join(p.cfg.DepsDir(), entry.TargetName(version))
	if err = copyFile(entry.SourcePath(p.cfg.ModulesDir()), target); err != nil {
		return fmt.Errorf("copy %s: %w", entry.Key(), err)
	}

	if len(entry.Extras) == 0 {
		return nil
	}

	values[entry.ExtrasPlaceholder()] = entry.ExtrasValue()

	for _, extra := range entry.Extras {
		url := p.cfg.ExtraURL(entry.Name, extra, entry.Filename)
		extraTarget := filepath.Join(p.cfg.DepsDir(), entry.TargetName(extra))

		logger.InfoKV(ctx, "Fetch extra version", "url", url, "target", filepath.Base(extraTarget))

		if err = p.fetchFile(ctx, url, extraTarget); err != nil {
			return fmt.Errorf("fetch %s@%s: %w", entry.Name, extra, err)
		}
	}

	return nil
}

func (p *Pipeline) fetchFile(ctx context.Context, url, target string) (err error) {
	out, err := os.Create(filepath.Clean(target))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			_ = os.Remove(target)
		}
	}()

	return p.fetcher.Fetch(ctx, url, out)
}

func (p *Pipeline) renderInit(ctx context.Context, values map[string]string) error {
	logger.InfoKV(ctx, "Generate the init file from template and versions", "path", p.cfg.InitOutputPath())

	rendered, err := template.RenderFile(p.cfg.TemplatePath(), values)
	if err != nil {
		return err
	}

	if err = artifact.Write(p.cfg.InitOutputPath(), []byte(rendered), artifact.DefaultFileMode); err != nil {
		return fmt.Errorf("write init file: %w", err)
	}

	return nil
}

// ensureDir creates the folder and its parents when missing.
func ensureDir(ctx context.Context, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		logger.ErrorKV(ctx, "Unable to create folder", "path", dir, "error", err)
		return fmt.Errorf("create %s: %w", dir, err)
	}

	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)

	return err
}
