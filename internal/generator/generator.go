// Package generator runs the external tool that emits generated snippets.
//
// The default generator is `cargo snippet -t vscode`, run from the crate root.
// Its standard output is the snippet document; its standard error is only
// surfaced when the command fails.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command is an external program plus its fixed arguments.
type Command struct {
	Name string
	Args []string
}

// Default returns the cargo-snippet invocation producing VSCode snippets.
func Default() Command {
	return Command{Name: "cargo", Args: []string{"snippet", "-t", "vscode"}}
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ExitError reports a generator that ran but exited with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Stderr  []byte
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// Run executes c with dir as its working directory and returns what it wrote
// to standard output. Standard input is empty. A non-zero exit is reported as
// *ExitError carrying the captured standard error.
func Run(c Command, dir string) ([]byte, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Command: c.String(),
				Code:    exitErr.ExitCode(),
				Stderr:  stderr.Bytes(),
			}
		}
		return nil, fmt.Errorf("run %s: %w", c, err)
	}

	return stdout.Bytes(), nil
}
