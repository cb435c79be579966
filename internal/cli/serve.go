package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/momentics/wsched/control"
	"github.com/momentics/wsched/sched"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// snapshotStats refreshes reg from s's current counters, the
// dependency-free alternative to the Prometheus path for a caller that just
// wants a single JSON blob rather than a scrape endpoint.
func snapshotStats(s *sched.Scheduler, reg *control.MetricsRegistry) {
	st := s.Stats()
	reg.Set("tasks_created", st.TotalCreated)
	reg.Set("tasks_completed", st.TotalCompleted)
	reg.Set("tasks_cancelled", st.TotalCancelled)
	reg.Set("tasks_active", st.ActiveTasks)
	reg.Set("tasks_pending", st.PendingTasks)
}

func newServeCmd() *cobra.Command {
	var addr string
	var enableJSON bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a long-running scheduler and serve its stats at /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newScheduler()
			defer s.Shutdown()

			reg := control.NewRegistry(s)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			mux.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
				for k, v := range s.DebugProbes().DumpState() {
					fmt.Fprintf(w, "%s: %v\n", k, v)
				}
			})

			if enableJSON {
				snapshot := control.NewMetricsRegistry()
				mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
					snapshotStats(s, snapshot)
					w.Header().Set("Content-Type", "application/json")
					json.NewEncoder(w).Encode(snapshot.GetSnapshot())
				})
			}

			logger.Printf("serving metrics on %s", addr)
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":9090", "listen address for /metrics and /debug")
	cmd.Flags().BoolVar(&enableJSON, "json", false, "also serve a dependency-free JSON stats snapshot at /stats")
	return cmd
}
