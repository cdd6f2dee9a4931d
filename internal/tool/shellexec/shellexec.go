// Package shellexec runs external commands with bounded output and a hard
// timeout. A timed-out command is first interrupted, then killed.
package shellexec

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrTimeout is returned when a command exceeds its time bound.
var ErrTimeout = errors.New("command timed out")

// gracePeriod is how long a command gets between SIGINT and SIGKILL.
const gracePeriod = 2 * time.Second

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// Runner executes commands on the local machine.
type Runner struct {
	maxOutputBytes int64
}

// NewRunner creates a Runner that caps each output stream at maxOutputBytes.
func NewRunner(maxOutputBytes int64) *Runner {
	if maxOutputBytes < 1 {
		panic("maxOutputBytes must be >= 1")
	}
	return &Runner{maxOutputBytes: maxOutputBytes}
}

// RunWithTimeout executes a command and collects capped stdout/stderr.
// On timeout the process is interrupted, then killed after a grace period,
// and ErrTimeout is returned alongside the partial result. Context
// cancellation kills the process immediately.
func (r *Runner) RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(command) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	// Collect output concurrently so it does not block the timeout select.
	var stdout, stderr string
	var truncated bool
	collectDone := make(chan struct{})
	go func() {
		stdout, stderr, truncated = r.collectOutput(stdoutPipe, stderrPipe)
		close(collectDone)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(gracePeriod):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	<-collectDone

	exitCode := 0
	if execErr != nil {
		exitCode = extractExitCode(execErr)
	}

	return &Result{
		Stdout:    stdout,
		Stderr:    stderr,
		ExitCode:  exitCode,
		Truncated: truncated,
	}, execErr
}

func (r *Runner) collectOutput(stdout, stderr io.Reader) (string, string, bool) {
	stdoutBuf := newCappedBuffer(r.maxOutputBytes)
	stderrBuf := newCappedBuffer(r.maxOutputBytes)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdoutBuf, stdout)
	}()

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderrBuf, stderr)
	}()

	wg.Wait()

	return stdoutBuf.String(), stderrBuf.String(), stdoutBuf.Truncated() || stderrBuf.Truncated()
}

func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
