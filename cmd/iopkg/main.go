// Command iopkg inspects cooked game asset packages.
package main

import (
	"os"
)

// Version is the semantic version (set via -ldflags).
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
