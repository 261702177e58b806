package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"lunofeed/internal/chaos"
	"lunofeed/internal/config"
	"lunofeed/internal/feed"
	"lunofeed/internal/ingest/luno"
	"lunofeed/internal/mdg"
	"lunofeed/internal/obs"
	"lunofeed/internal/server"
	"lunofeed/internal/sink/kafka"
	"lunofeed/internal/sink/redis"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("lunofeed, err: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "lunofeed.toml", "path to the TOML config file")
	simulate := flag.Duration("simulate", 0, "drive every market from a synthetic stream at this interval instead of Luno")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if p := cfg.Profiling; p != nil {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: p.AppName,
			ServerAddress:   p.ServerAddress,
			Logger:          profilerLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return errors.Wrap(err, "start profiler")
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	metrics := obs.NewMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		obs.NewCollector("lunofeed", metrics),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sinks, closeSinks, err := buildSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	dispatcher := feed.NewDispatcher(feed.Option{
		TradesLimit: cfg.TradesLimit,
		Depth:       cfg.Depth,
		Metrics:     metrics,
		Sinks:       sinks,
	})
	router := feed.NewRouter(dispatcher, cfg.QueueSize, metrics)
	if err := router.Start(ctx); err != nil {
		return err
	}
	defer router.Stop()

	publish := router.Publish
	if cfg.Chaos != nil {
		if publish, err = chaos.Handler(*cfg.Chaos, router.Publish); err != nil {
			return err
		}
		logs.Infof("chaos enabled, drop: %.3f, duplicate: %.3f, reorder: %d",
			cfg.Chaos.DropRate, cfg.Chaos.DuplicateRate, cfg.Chaos.ReorderWindow)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, sub := range cfg.Markets {
		if *simulate > 0 {
			g, err := mdg.NewGenerator(int64(i+1), 1_000_000, 100, 50)
			if err != nil {
				return err
			}

			eg.Go(func() error {
				return mdg.Run(ctx, g, &sub, *simulate, publish)
			})
			continue
		}

		stream, err := luno.NewStream(ctx, cfg.URL, sub, cfg.Credential)
		if err != nil {
			return err
		}

		eg.Go(func() error {
			return stream.Run(ctx, publish)
		})
	}

	if len(cfg.HTTP.Addr) != 0 {
		h := server.New(dispatcher, reg, cfg.HTTP.ReadTimeout)
		eg.Go(func() error {
			return server.Serve(ctx, cfg.HTTP.Addr, h)
		})
	}

	logs.Infof("lunofeed started, markets: %d", len(cfg.Markets))
	if err := eg.Wait(); err != nil {
		return err
	}

	logs.Info("lunofeed stopped")
	return nil
}

func buildSinks(ctx context.Context, cfg config.Loaded) ([]feed.Sink, func(), error) {
	var (
		sinks   []feed.Sink
		closers []func() error
	)

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logs.Errorf("close sink, err: %+v", err)
			}
		}
	}

	if r := cfg.Redis; r != nil {
		rdb, err := redis.Dial(ctx, redis.ClientConfig{
			Addr:       r.Addr,
			Password:   r.Password,
			DB:         r.DB,
			PoolSize:   r.PoolSize,
			MaxRetries: r.MaxRetries,
			TLSEnabled: r.TLSEnabled,
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, rdb.Close)
		sinks = append(sinks, redis.NewSink(rdb, r.Prefix))
	}

	if k := cfg.Kafka; k != nil {
		s := kafka.NewSink(kafka.NewWriter(k.Brokers), k.BookTopic, k.TradesTopic)
		closers = append(closers, s.Close)
		sinks = append(sinks, s)
	}

	return sinks, closeAll, nil
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...interface{})  { logs.Infof(format, args...) }
func (profilerLogger) Debugf(format string, args ...interface{}) {}
func (profilerLogger) Errorf(format string, args ...interface{}) { logs.Errorf(format, args...) }
