package corpus

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"tacc/internal/driver"
)

// Result is the outcome of running one Case end to end.
type Result struct {
	Case   Case
	Got    string
	Passed bool
	Err    error
}

// Run compiles and executes c in an isolated scratch binary, comparing its
// stdout against c.ExpectedStdout() (§6 "Compile, run, compare").
func Run(c Case) Result {
	asm, err := driver.CompileToAsm(c.Source, nil)
	if err != nil {
		return Result{Case: c, Err: fmt.Errorf("compile: %w", err)}
	}

	binPath := filepath.Join(os.TempDir(), "tacc-corpus-"+uuid.NewString())
	if err := driver.CompileToPath(asm, binPath); err != nil {
		return Result{Case: c, Err: err}
	}
	defer os.Remove(binPath)

	cmd := exec.Command(binPath)
	cmd.Stdin = bytes.NewReader(c.StdinBytes())
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return Result{Case: c, Err: fmt.Errorf("run: %w", err)}
	}

	got := stdout.String()
	return Result{Case: c, Got: got, Passed: got == c.ExpectedStdout()}
}
