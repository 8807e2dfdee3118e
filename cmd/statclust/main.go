// Package main provides the statclust CLI.
//
// Usage:
//
//	statclust [flags] <command> [args]
//
// Commands:
//
//	run      - load records, cluster them and print the assignments
//	sweep    - cluster the same records for several k
//	show     - print a stored clustering result
//	predict  - assign new metrics to a stored clustering result
//
// Configuration:
//
//	Settings are read from a YAML file (--config) and can be overridden
//	with flags.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/statclust/cmd/statclust/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
