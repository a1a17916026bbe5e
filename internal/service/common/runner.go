package common

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"go.trai.ch/zerr"

	"github.com/oshokin/dash-build/internal/logger"
)

// Runner starts external tools such as the package manager.
type Runner interface {
	// Run executes name with args in dir and blocks until it exits.
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner implements Runner with os/exec.
// Tool output is forwarded line by line to the context logger.
type ExecRunner struct{}

// NewExecRunner creates a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and wraps a failure with its exit code.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	commandLine := strings.TrimSpace(name + " " + strings.Join(args, " "))
	ctx = logger.WithKV(ctx, "command", commandLine)

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Tool names come from the build configuration.
	cmd.Dir = dir

	stdout := newLineWriter(func(line string) { logger.Info(ctx, line) })
	stderr := newLineWriter(func(line string) { logger.Warn(ctx, line) })
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()

	stdout.Flush()
	stderr.Flush()

	if err == nil {
		return nil
	}

	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return zerr.With(zerr.Wrap(err, commandLine+" failed"), exitCodeKey, exitCode)
}

// lineWriter splits written bytes into lines and hands each to emit.
type lineWriter struct {
	mu      sync.Mutex
	pending bytes.Buffer
	emit    func(string)
}

func newLineWriter(emit func(string)) *lineWriter {
	return &lineWriter{emit: emit}
}

// Write buffers p and emits every complete line.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending.Write(p)

	for {
		line, err := w.pending.ReadString('\n')
		if err != nil {
			// Incomplete line, keep it for the next write.
			w.pending.Reset()
			w.pending.WriteString(line)

			break
		}

		w.emitLine(line)
	}

	return len(p), nil
}

// Flush emits a trailing line without a newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending.Len() > 0 {
		w.emitLine(w.pending.String())
		w.pending.Reset()
	}
}

func (w *lineWriter) emitLine(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line != "" {
		w.emit(line)
	}
}
