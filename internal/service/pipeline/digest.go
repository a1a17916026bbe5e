package pipeline

import (
	"context"
	"crypto/md5" //nolint:gosec // MD5 is the digest format consumers compare against.
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/dash-build/internal/domain/npm"
	"github.com/oshokin/dash-build/internal/logger"
	"github.com/oshokin/dash-build/internal/repository/artifact"
)

// bundleExtensions selects the files recorded in the digest.
var bundleExtensions = map[string]struct{}{
	".js":  {},
	".map": {},
}

// ComputeDigest hashes every .js and .map file of the deps and build folders
// and writes the payload to the digest file.
func (p *Pipeline) ComputeDigest(ctx context.Context) (npm.Digest, error) {
	if err := ensureDir(ctx, p.cfg.DepsDir()); err != nil {
		return nil, err
	}

	digest := npm.NewDigest(p.desc.Name, p.desc.Version)

	for _, folder := range []string{p.cfg.DepsDir(), p.cfg.BuildDir()} {
		bundles, err := listBundles(folder)
		if err != nil {
			return nil, err
		}

		logger.InfoKV(ctx, "Bundles found", "folder", folder, "files", bundles)

		for _, name := range bundles {
			checksum, err := fileMD5(filepath.Join(folder, name))
			if err != nil {
				return nil, err
			}

			digest.Add(name, checksum)
		}
	}

	data, err := digest.MarshalFile()
	if err != nil {
		return nil, fmt.Errorf("encode digest: %w", err)
	}

	if err = artifact.Write(p.cfg.DigestPath(), data, artifact.DefaultFileMode); err != nil {
		return nil, fmt.Errorf("write digest: %w", err)
	}

	logger.Infof(ctx, "Bundle digest in %s:\n%s", filepath.Base(p.cfg.DigestPath()), digest.Pretty())

	return digest, nil
}

// listBundles returns the bundle file names of folder in directory order.
func listBundles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	bundles := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if _, ok := bundleExtensions[filepath.Ext(entry.Name())]; ok {
			bundles = append(bundles, entry.Name())
		}
	}

	return bundles, nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	hasher := md5.New() //nolint:gosec // MD5 is the digest format consumers compare against.
	if _, err = io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
