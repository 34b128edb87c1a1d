// Package main provides the semtok CLI tool.
//
// Usage:
//
//	semtok [flags] <command> [args]
//
// Commands:
//
//	embed    - Extract embedding frames from audio files into a corpus file
//	fit      - Fit a codebook to a corpus and store it
//	tokenize - Turn audio files into discrete token sequences
//	info     - Show a stored codebook
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/semtok/cmd/semtok/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
