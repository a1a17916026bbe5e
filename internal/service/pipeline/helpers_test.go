package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/dash-build/internal/config"
	"github.com/oshokin/dash-build/internal/domain/npm"
	"github.com/oshokin/dash-build/internal/logger"
)

const (
	testManifest = `{"name":"dash-renderer","version":"1.0.0","dependencies":{"react":"^18.2.0"}}`
	testLock     = `{"name":"dash-renderer","version":"1.0.0","lockfileVersion":1,` +
		`"dependencies":{"react":{"version":"18.2.0"}}}`
	testTemplate = "__version__ = \"$version\"\n" +
		"__package__ = \"$package\"\n" +
		"_react = \"${react}\"\n" +
		"_extras = [$extra_react_versions]\n" +
		"_unknown = \"$reactdom\"\n"
	testBundle = "/* react production */"
)

// runCall records one Runner invocation.
type runCall struct {
	Dir  string
	Name string
	Args []string
}

func (c runCall) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// fakeRunner records calls and lets tests emulate the package manager.
type fakeRunner struct {
	mu    sync.Mutex
	calls []runCall
	// effects maps a command line such as "npm ci" to a side effect or failure.
	effects map[string]func(dir string) error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{effects: make(map[string]func(string) error)}
}

func (r *fakeRunner) Run(_ context.Context, dir, name string, args ...string) error {
	call := runCall{Dir: dir, Name: name, Args: append([]string(nil), args...)}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	effect := r.effects[call.String()]
	r.mu.Unlock()

	if effect != nil {
		return effect(dir)
	}

	return nil
}

func (r *fakeRunner) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		out = append(out, call.String())
	}

	return out
}

// cdn serves historical bundles and counts requests per path.
type cdn struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

func newCDN(t *testing.T) *cdn {
	t.Helper()

	c := &cdn{}
	c.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.requests = append(c.requests, r.URL.Path)
		c.mu.Unlock()

		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}

		_, _ = fmt.Fprintf(w, "/* cdn %s */", r.URL.Path)
	}))
	t.Cleanup(c.Close)

	return c
}

func (c *cdn) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.requests...)
}

// project is a throwaway dash-renderer checkout.
type project struct {
	root string
	cfg  *config.Config
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// newProject lays out manifest, lock file, template and one installed bundle.
func newProject(t *testing.T) *project {
	t.Helper()

	root := filepath.Join(t.TempDir(), "dash-renderer")

	writeFile(t, filepath.Join(root, "package.json"), testManifest)
	writeFile(t, filepath.Join(root, "package-lock.json"), testLock)
	writeFile(t, filepath.Join(root, "init.template"), testTemplate)
	writeFile(t, filepath.Join(root, "node_modules", "react", "umd", "react.production.min.js"), testBundle)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))

	cfg := config.Default(root)
	cfg.CopySpec = npm.CopySpec{
		{Name: "react", Subfolder: "umd", Filename: "react.production.min.js"},
	}

	return &project{root: root, cfg: cfg}
}

func (p *project) newPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()

	pl, err := New(p.cfg, opts...)
	require.NoError(t, err)

	return pl
}

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer

	return logger.ToContext(context.Background(), logger.NewWithWriter(&buf, zapcore.DebugLevel)), &buf
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}
