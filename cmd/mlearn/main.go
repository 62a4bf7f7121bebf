// Command mlearn benchmarks the multi-label meta-learners on synthetic data.
package main

import (
	"os"

	"github.com/YuminosukeSato/mlearn/cmd/mlearn/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
