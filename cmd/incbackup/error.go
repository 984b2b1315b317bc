package main

import (
	"fmt"
	"os"
)

// fatal prints an error message to standard error and terminates the
// process with a non-zero exit code.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
