// Command wsched-demo drives the scheduler through the scenario suite from
// the command line, either for a manual smoke run or as a scriptable
// benchmark (grounded on wilke-GoWe's cmd/cwl-runner/main.go, which is
// likewise a thin wrapper delegating everything to internal/cli).
package main

import (
	"os"

	"github.com/momentics/wsched/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
