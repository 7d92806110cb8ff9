package invoke

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ExternalToolFailureError is returned when protoc could not be started or
// exited with a non-zero status.
type ExternalToolFailureError struct {
	Invocation Invocation
	Stdout     string
	Stderr     string
	Err        error
}

func (e *ExternalToolFailureError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "protoc run for %s failed: %v\ncommand: %s", e.Invocation.Kind, e.Err, e.Invocation)
	if out := strings.TrimSpace(e.Stderr); out != "" {
		fmt.Fprintf(&buf, "\n%s", out)
	}
	return buf.String()
}

func (e *ExternalToolFailureError) Unwrap() error {
	return e.Err
}

// Runner runs protoc invocations.
type Runner struct {
	Logger hclog.Logger
	// When true, invocations are printed to Stdout instead of run.
	DryRun bool
	Stdout io.Writer
}

// Run runs inv and waits for it to finish. Both output streams are captured;
// they are logged at debug level and, on failure, reported in the returned
// ExternalToolFailureError.
func (r *Runner) Run(ctx context.Context, inv Invocation) error {
	logger := r.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if r.DryRun {
		out := r.Stdout
		if out == nil {
			out = os.Stdout
		}
		_, err := fmt.Fprintln(out, inv.String())
		return err
	}

	if inv.OutputDir != "" {
		if err := os.MkdirAll(inv.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %v", inv.OutputDir, err)
		}
	}

	logger.Debug("running protoc", "kind", inv.Kind, "command", inv.String())
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if stdout.Len() > 0 {
		logger.Debug("protoc stdout", "kind", inv.Kind, "output", stdout.String())
	}
	if stderr.Len() > 0 {
		logger.Debug("protoc stderr", "kind", inv.Kind, "output", stderr.String())
	}
	if err != nil {
		return &ExternalToolFailureError{
			Invocation: inv,
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			Err:        err,
		}
	}
	return nil
}
