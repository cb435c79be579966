package cli

import (
	"fmt"
	"time"

	"github.com/momentics/wsched/jobtable"
	"github.com/momentics/wsched/sched"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic layered-DAG load from a YAML config and report wall-clock",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadBenchConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading bench config: %w", err)
			}

			opts := []sched.Option{}
			if cfg.Workers > 0 {
				opts = append(opts, sched.WithWorkerCount(cfg.Workers))
			}
			if cfg.NumaNodes > 0 {
				opts = append(opts, sched.WithSyntheticTopology(cfg.NumaNodes, cfg.CPUsPerNode))
			}
			s := sched.New(opts...)
			defer s.Shutdown()

			start := time.Now()
			layer := make([]jobtable.Handle, cfg.Width)
			for d := 0; d < cfg.Depth; d++ {
				next := make([]jobtable.Handle, cfg.Width)
				for w := 0; w < cfg.Width; w++ {
					dep := jobtable.NoHandle
					if d > 0 {
						dep = layer[w]
					}
					h, err := s.Schedule(-1, "bench", func(_ int32, _ any) {}, nil, dep, sched.PriorityNormal)
					if err != nil {
						return fmt.Errorf("schedule failed at layer %d slot %d: %w", d, w, err)
					}
					next[w] = h
				}
				layer = next
			}
			s.WaitAll(-1, layer)
			elapsed := time.Since(start)

			stats := s.Stats()
			logger.Printf("bench: depth=%d width=%d workers=%d jobs=%d elapsed=%s completed=%d",
				cfg.Depth, cfg.Width, s.WorkerCount(), cfg.Depth*cfg.Width, elapsed, stats.TotalCompleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML bench config (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
