package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/adapters/driven/auth"
	"github.com/custodia-labs/folio/internal/adapters/driven/notify"
	redisadapter "github.com/custodia-labs/folio/internal/adapters/driven/redis"
	"github.com/custodia-labs/folio/internal/adapters/driven/snapshot"
	httpadapter "github.com/custodia-labs/folio/internal/adapters/driving/http"
	"github.com/custodia-labs/folio/internal/binding"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/core/services"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		host  string
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and apply push updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				c.cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				c.cfg.Port = port
			}
			if cmd.Flags().Changed("watch") {
				c.cfg.SnapshotWatch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, c)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the snapshot file when it changes (overrides SNAPSHOT_WATCH)")
	return cmd
}

func runServe(ctx context.Context, c *cli) error {
	logger := c.logger
	a, err := newApp(c.cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	a.restore(ctx)

	hub := httpadapter.NewLiveHub(c.cfg.AllowedOrigins, logger)
	site := binding.NewSiteBinding(binding.Config{
		Service:  a.content,
		Notifier: notify.NewMulti(notify.NewLogNotifier(logger), hub),
		Logger:   logger,
	})
	defer site.OnChange(hub.PublishState)()
	site.Mount(ctx)
	defer site.Unmount()

	var push driving.PushService
	var relay driven.PushRelay
	if c.cfg.PushSecret != "" {
		if a.redis != nil {
			relay = redisadapter.NewRelay(a.redis, logger)
		}
		push = services.NewPushService(services.PushServiceConfig{
			Content: a.content,
			Tokens:  auth.NewAdapter(c.cfg.PushSecret),
			Relay:   relay,
			Logger:  logger,
		})
		a.state.Config().SetPushEnabled(true)
	} else {
		logger.Info("PUSH_SECRET not set, push endpoints disabled")
	}

	if c.cfg.SnapshotWatch {
		w, err := snapshot.NewWatcher(snapshot.WatcherConfig{
			Store:    a.fileStore,
			OnChange: a.republish,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	svcs := httpadapter.Services{
		Site:    site,
		Media:   services.NewMediaResolver(a.state, logger),
		Contact: services.NewContactService(a.api, a.state, logger),
		Push:    push,
		Live:    hub,
	}
	if a.lock != nil {
		svcs.Redis = a.lock
	}
	server, err := httpadapter.NewServer(httpadapter.Config{
		Host:           c.cfg.Host,
		Port:           c.cfg.Port,
		Version:        version,
		AllowedOrigins: c.cfg.AllowedOrigins,
		Logger:         logger,
	}, svcs)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})
	if push != nil && relay != nil {
		g.Go(func() error {
			err := push.Relay(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
