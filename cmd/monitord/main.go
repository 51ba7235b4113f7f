package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/hostwatch/internal/alert"
	"github.com/hamed0406/hostwatch/internal/archive"
	"github.com/hamed0406/hostwatch/internal/config"
	"github.com/hamed0406/hostwatch/internal/gateway"
	"github.com/hamed0406/hostwatch/internal/history"
	"github.com/hamed0406/hostwatch/internal/httpapi"
	mw "github.com/hamed0406/hostwatch/internal/httpapi/middleware"
	"github.com/hamed0406/hostwatch/internal/logging"
	"github.com/hamed0406/hostwatch/internal/notify"
	"github.com/hamed0406/hostwatch/internal/scheduler"
)

func main() {
	cfgPath := flag.String("config", "hostwatch.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := history.New(history.DefaultCapacity)

	sinks := notify.Multi{notify.NewLog(logger)}
	if s := notify.NewSlack(cfg.Notify.SlackWebhook); s != nil {
		sinks = append(sinks, s)
	}
	if e := notify.NewEmail(cfg.Notify.BrevoAPIKey, cfg.Notify.EmailFrom, cfg.Notify.EmailTo); e != nil {
		sinks = append(sinks, e)
	}

	// The scheduler doubles as the evaluator's monitored-set view; it is
	// installed below, once it exists.
	eval := alert.NewEvaluator(logger, sinks, nil, alert.Globals{
		Enabled:         cfg.Notifications.Enabled,
		ApplyToAll:      cfg.Notifications.ApplyToAll,
		AggregateOutage: cfg.Notifications.AggregateOutage,
	})

	opts := scheduler.Options{
		Logger:           logger,
		Store:            store,
		Evaluator:        eval,
		RefreshInterval:  cfg.Gateway.RefreshInterval,
		ArchiveRetention: cfg.Archive.Retention,
	}
	var archReader httpapi.ArchiveReader
	if cfg.Archive.Path != "" {
		arch, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			log.Fatal(err)
		}
		defer arch.Close()
		opts.Archive = arch
		archReader = arch
	}
	if cfg.Gateway.Enabled {
		opts.Resolver = gateway.NewUDPResolver(cfg.Gateway.Fallback)
	}

	sched := scheduler.New(opts)
	eval.SetView(sched)
	sched.Start(cfg.Hosts)

	api := httpapi.NewServer(logger, sched, store, archReader,
		mw.Keys{Public: cfg.API.PublicKeys, AdminHash: cfg.API.AdminKeyHash},
		cfg.API.RatePerMin, cfg.API.Burst,
	)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		sched.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("exit_error", zap.Error(err))
		log.Fatal(err)
	}
}
