// Command contribproof generates the proof of contribution for a single data
// submission and writes it as JSON for the pool's publisher.
package main

import (
	"os"

	"github.com/ppiankov/contribproof/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
