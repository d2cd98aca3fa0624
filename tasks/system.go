package tasks

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

//Runner executes the build tool's clean target.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

//ExecRunner runs commands as child processes and waits for them.
type ExecRunner struct{}

//Run starts name in dir and returns its combined output.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

//IsLaunchError reports whether err means the command never ran,
//as opposed to running and exiting with a non-zero status.
func IsLaunchError(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	return !errors.As(err, &exitErr)
}
