package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/slipstream/metascrape/internal/api"
	"github.com/slipstream/metascrape/internal/health"
	"github.com/slipstream/metascrape/internal/metadata"
	"github.com/slipstream/metascrape/internal/metrics"
	"github.com/slipstream/metascrape/internal/scheduler"
	"github.com/slipstream/metascrape/internal/scraper"
	"github.com/slipstream/metascrape/internal/startup"
	"github.com/slipstream/metascrape/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()
			if port > 0 {
				a.cfg.Server.Port = port
			}
			return serve(cmd.Context(), a)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config)")
	return cmd
}

func serve(parent context.Context, a *app) error {
	log := a.log.Logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	hub := websocket.NewHub(log)
	hs := health.NewService(log)
	hs.SetBroadcaster(hub)

	svc, err := a.newService(metadata.WithScraperOptions(scraper.WithRecorder(scraper.Recorders(m, hs))))
	if err != nil {
		return err
	}
	reg.MustRegister(metrics.NewStateCollector(svc))

	for _, p := range svc.Providers() {
		hs.Register(p.Name)
		if !p.Configured {
			hs.SetWarning(p.Name, "API key is not configured")
		}
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go hub.Run(ctx)

	if err := startup.WithRetry(ctx, "provider configuration", startup.DefaultRetryConfig(), svc.Configure, log); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Warn().Err(err).Msg("provider configuration incomplete, some providers use defaults")
	}

	sched, err := newScheduler(a, svc)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown error")
		}
	}()

	server := api.NewServer(a.cfg, svc, hs, reg, log)
	server.RegisterHub(hub)
	server.RegisterScheduler(sched)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(a.cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// newScheduler registers the background tasks enabled in config.
func newScheduler(a *app, svc *metadata.Service) (*scheduler.Scheduler, error) {
	sched, err := scheduler.New(a.log.Logger)
	if err != nil {
		return nil, err
	}
	if a.cfg.Scheduler.ConfigureCron != "" {
		err := sched.Register(scheduler.Task{
			ID:          "provider-configuration",
			Name:        "Provider configuration",
			Description: "Refresh remote provider configuration such as the TMDB image base URL",
			Cron:        a.cfg.Scheduler.ConfigureCron,
			Func:        svc.Configure,
		})
		if err != nil {
			return nil, err
		}
	}
	return sched, nil
}
