package marker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mitchellh/go-ps"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/dash-build/internal/domain/run"
	"github.com/oshokin/dash-build/internal/logger"
)

// DefaultFilename is created in the project root while a run is in progress.
const DefaultFilename = ".dash-build.pid"

const (
	filePermissions = 0o600
	// acquireAttempts allows one retry after removing a stale or unreadable marker.
	acquireAttempts = 2
)

var (
	// ErrNotFound is returned when no marker exists.
	ErrNotFound = errors.New("run marker not found")
	// ErrRunning is returned when another live process holds the marker.
	ErrRunning = errors.New("another build is running in this project")
)

// FileRepository keeps the marker as a small YAML file.
type FileRepository struct {
	// path is the filesystem location of the marker.
	path string
	// mu serializes marker access within the process.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes the marker at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the marker from disk.
func (r *FileRepository) Load(_ context.Context) (*run.Marker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Acquire writes the marker unless a live process already holds it.
// A marker left behind by a dead process is removed first.
// Creation is exclusive, so of two racing processes only one gets the marker.
func (r *FileRepository) Acquire(ctx context.Context, marker *run.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(marker)
	if err != nil {
		return fmt.Errorf("encode run marker: %w", err)
	}

	for range acquireAttempts {
		err = r.create(data)
		if !errors.Is(err, os.ErrExist) {
			return err
		}

		held, takeErr := r.takeOver(ctx, marker)
		if takeErr != nil || held {
			return takeErr
		}
	}

	return fmt.Errorf("%s was recreated while acquiring: %w", r.path, ErrRunning)
}

// takeOver inspects an existing marker. It reports true when the marker is
// already ours and removes it when its owner is gone.
func (r *FileRepository) takeOver(ctx context.Context, marker *run.Marker) (bool, error) {
	existing, err := r.load()

	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		logger.WarnKV(ctx, "Unreadable run marker, replacing it", "path", r.path, "error", err)
	case existing.PID == marker.PID:
		logger.DebugKV(ctx, "Run marker already held by this process", "pid", marker.PID)

		return true, nil
	default:
		alive, aliveErr := processAlive(existing.PID)
		if aliveErr != nil {
			return false, fmt.Errorf("check process %d: %w", existing.PID, aliveErr)
		}

		if alive {
			return false, fmt.Errorf("pid %d (%s) since %s: %w",
				existing.PID, existing.Owner(), existing.StartedAt.Format("15:04:05"), ErrRunning)
		}

		logger.WarnKV(ctx, "Removing stale run marker", "path", r.path, "pid", existing.PID)
	}

	if err = os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("remove run marker: %w", err)
	}

	return false, nil
}

// create stages data in a temporary file and links it into place.
// The link fails with os.ErrExist when a marker is already present,
// and a marker is never visible half-written.
func (r *FileRepository) create(data []byte) error {
	staging, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+"-*")
	if err != nil {
		return fmt.Errorf("stage run marker: %w", err)
	}

	stagingPath := staging.Name()
	defer os.Remove(stagingPath) //nolint:errcheck // The staging file is unused either way.

	_, err = staging.Write(data)
	if closeErr := staging.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("write run marker: %w", err)
	}

	if err = os.Chmod(stagingPath, filePermissions); err != nil {
		return fmt.Errorf("write run marker: %w", err)
	}

	if err = os.Link(stagingPath, r.path); err != nil {
		return fmt.Errorf("create run marker: %w", err)
	}

	return nil
}

// Release removes the marker. A missing marker is not an error.
func (r *FileRepository) Release(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove run marker: %w", err)
	}

	return nil
}

func (r *FileRepository) load() (*run.Marker, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read run marker: %w", err)
	}

	var marker run.Marker
	if err = yaml.Unmarshal(contents, &marker); err != nil {
		return nil, fmt.Errorf("decode run marker: %w", err)
	}

	return &marker, nil
}

// processAlive reports whether a process with the given PID is running.
func processAlive(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, err
	}

	return process != nil, nil
}
