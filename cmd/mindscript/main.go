// Command mindscript is the MindScript interpreter: run a script file,
// evaluate an inline expression, or drop into a REPL.
package main

import (
	"os"

	"github.com/DAIOS-AI/mindscript/cmd/mindscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
