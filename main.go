package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/lintrun/cmd/cli"
	"github.com/temirov/lintrun/internal/linting"
)

const (
	exitErrorTemplateConstant = "%v\n"
	failureExitCodeConstant   = 1
)

// main executes the lintrun command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	if !errors.Is(executionError, linting.ErrChecksFailed) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(failureExitCodeConstant)
}
