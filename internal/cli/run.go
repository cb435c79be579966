package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var only string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the end-to-end scenario suite (S1-S6) and report pass/fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if only != "" {
				for _, sc := range Scenarios {
					if sc.Name == only {
						s := newScheduler()
						defer s.Shutdown()
						if err := sc.Run(s); err != nil {
							return fmt.Errorf("%s: %w", sc.Name, err)
						}
						logger.Printf("%s: ok", sc.Name)
						return nil
					}
				}
				return fmt.Errorf("unknown scenario %q", only)
			}

			failed := RunAll()
			if len(failed) > 0 {
				return fmt.Errorf("%d scenario(s) failed: %v", len(failed), failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&only, "only", "", "run a single named scenario instead of the whole suite")
	return cmd
}
