package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Daniil-Sakharov/hockey-project-sub001/internal/services"
	"github.com/Daniil-Sakharov/hockey-project-sub001/pkg/metrics"
)

type syncView services.DrainResult

func (v syncView) render(w io.Writer) error {
	if v.Skipped {
		return fields{{"Directory", "unreachable"}, {"Pending", strconv.Itoa(v.Remaining)}}.render(w)
	}
	return fields{
		{"Synced", strconv.Itoa(v.Synced)},
		{"Retried", strconv.Itoa(v.Retried)},
		{"Dropped", strconv.Itoa(v.Dropped)},
		{"Pending", strconv.Itoa(v.Remaining)},
	}.render(w)
}

func (a *App) newSyncCmd() *cobra.Command {
	var (
		watch       bool
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay pending account changes to the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return a.watchSync(cmd.Context(), metricsAddr)
			}
			ctx, cancel := a.timeout(cmd.Context())
			defer cancel()
			result, err := a.processor.Drain(ctx)
			if err != nil {
				return err
			}
			view := syncView(result)
			return a.print(view, view)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep draining every sync_interval until interrupted")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")
	return cmd
}

// watchSync keeps the directory monitor and the drain schedule running until
// the context is cancelled or the process is interrupted.
func (a *App) watchSync(parent context.Context, metricsAddr string) error {
	ctx, cancel := a.manager.WithSignals(parent)
	defer cancel()

	if metricsAddr != "" {
		registry := metrics.New()
		a.processor.WithMetrics(registry)
		server := &fasthttp.Server{Handler: registry.Handler(), Name: "hockeyctl"}
		go func() {
			if err := server.ListenAndServe(metricsAddr); err != nil {
				a.logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
		a.manager.Register("metrics", server.ShutdownWithContext)
	}

	a.monitor.Start()
	a.manager.RegisterFunc("directory monitor", a.monitor.Stop)
	a.processor.Start()
	a.manager.Register("sync", func(ctx context.Context) error {
		a.processor.Stop(ctx)
		return nil
	})

	a.println("Watching %d pending change(s) every %s", a.processor.Size(), a.v.GetDuration("sync_interval"))
	<-ctx.Done()
	a.println("Stopped with %d pending change(s)", a.processor.Size())
	return nil
}
