// Package supervisor runs the build tool and hands its output streams and
// exit status to the translation pipeline.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// ErrSpawn wraps failures to start the build tool
var ErrSpawn = errors.New("failed to start build tool")

// Process is a running build tool
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	// Wait must only be called after both streams have been read to EOF
	Wait() (int, error)
}

// Spawner starts processes
type Spawner interface {
	Spawn(ctx context.Context) (Process, error)
}

// Command describes how to run the build tool
type Command struct {
	Program string
	Args    []string
	Dir     string
	Env     []string
}

// Cargo returns the command for "cargo <subcommand> --color=always [extra...]" in dir
func Cargo(dir, subcommand string, extra ...string) *Command {
	if subcommand == "" {
		subcommand = "check"
	}
	args := append([]string{subcommand, "--color=always"}, extra...)
	return &Command{
		Program: "cargo",
		Args:    args,
		Dir:     dir,
	}
}

// String renders the command line for logs
func (c *Command) String() string {
	s := c.Program
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// Spawn starts the command with both output streams piped. The process is
// killed when ctx is cancelled.
func (c *Command) Spawn(ctx context.Context) (Process, error) {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, c.Program, err)
	}

	return &process{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

type process struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *process) Stdout() io.Reader { return p.stdout }
func (p *process) Stderr() io.Reader { return p.stderr }

// Wait returns the exit code of the process. A process that did not exit
// normally, e.g. because it was killed by a signal, reports 1.
func (p *process) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		return 1, nil
	}
	return 1, fmt.Errorf("failed to wait for build tool: %w", err)
}
