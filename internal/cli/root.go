package cli

import (
	"log"
	"os"

	"github.com/momentics/wsched/sched"
	"github.com/spf13/cobra"
)

var (
	flagWorkers     int
	flagNumaNodes   int
	flagCPUsPerNode int

	logger *log.Logger
)

// NewRootCmd builds the wsched-demo root command (grounded on
// wilke-GoWe's internal/cli/root.go: persistent flags resolved once in
// PersistentPreRun, subcommands added via AddCommand).
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wsched-demo",
		Short: "Drive the work-stealing job scheduler through its scenario suite",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = log.New(os.Stderr, "wsched-demo: ", log.LstdFlags)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker goroutine count (0 = logical CPUs - 1, at least 1)")
	root.PersistentFlags().IntVar(&flagNumaNodes, "numa-nodes", 0, "synthetic NUMA node count (0 = detect real topology)")
	root.PersistentFlags().IntVar(&flagCPUsPerNode, "cpus-per-node", 0, "CPUs per synthetic NUMA node")

	root.AddCommand(newRunCmd(), newServeCmd(), newBenchCmd())
	return root
}

func newScheduler() *sched.Scheduler {
	opts := []sched.Option{}
	if flagWorkers > 0 {
		opts = append(opts, sched.WithWorkerCount(flagWorkers))
	}
	if flagNumaNodes > 0 {
		opts = append(opts, sched.WithSyntheticTopology(flagNumaNodes, flagCPUsPerNode))
	}
	return sched.New(opts...)
}
