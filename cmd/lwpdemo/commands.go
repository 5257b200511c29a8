package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	lwp "github.com/Swind/go-lwp"
	obs "github.com/Swind/go-lwp/observability/prometheus"
)

func pingPongCommand() *cli.Command {
	return &cli.Command{
		Name:  "pingpong",
		Usage: "Two threads hand control back and forth with park/unpark",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "rounds",
				Aliases: []string{"n"},
				Value:   5,
				Usage:   "Number of round trips",
			},
		},
		Action: pingPongAction,
	}
}

func pingPongAction(c *cli.Context) error {
	rounds := c.Int("rounds")
	if rounds < 1 {
		return cli.Exit("rounds must be at least 1", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	rt, err := lwp.New(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	var ping, pong lwp.ID
	turn := "ping"
	player := func(name, other string, peer *lwp.ID) func(any) {
		return func(any) {
			for i := 0; i < rounds; i++ {
				for turn != name {
					if err := rt.Park(time.Time{}, lwp.NoID); err != nil {
						fmt.Printf("%s: %v\n", name, err)
						return
					}
				}
				fmt.Printf("%s %d (lwp %d)\n", name, i, rt.Self())
				turn = other
				_ = rt.Unpark(*peer)
			}
		}
	}

	if ping, err = rt.Spawn(player("ping", "pong", &pong), nil, nil, 0); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	if pong, err = rt.Spawn(player("pong", "ping", &ping), nil, nil, 0); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	_ = rt.SetName(ping, "ping")
	_ = rt.SetName(pong, "pong")

	if err := runToCompletion(rt); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	stats := rt.Stats()
	fmt.Printf("✓ Done: %d threads spawned, %d context switches\n", stats.Spawned, stats.Switches)
	return nil
}

func parkTimeoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "park",
		Usage: "Park a thread with a deadline and report how it ended",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 50 * time.Millisecond,
				Usage: "Park deadline, relative to now",
			},
			&cli.DurationFlag{
				Name:  "unpark-after",
				Usage: "Unpark the sleeper after this long (0 = never)",
			},
		},
		Action: parkTimeoutAction,
	}
}

func parkTimeoutAction(c *cli.Context) error {
	timeout := c.Duration("timeout")
	unparkAfter := c.Duration("unpark-after")

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	rt, err := lwp.New(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	var result error
	var waited time.Duration
	sleeper, err := rt.Spawn(func(any) {
		start := time.Now()
		result = rt.ParkTimeout(timeout, lwp.NoID)
		waited = time.Since(start)
	}, nil, nil, 0)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	if unparkAfter > 0 {
		_, err = rt.Spawn(func(any) {
			_ = rt.ParkTimeout(unparkAfter, lwp.NoID)
			_ = rt.Unpark(sleeper)
		}, nil, nil, 0)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
	}

	if err := runToCompletion(rt); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	switch {
	case errors.Is(result, lwp.ErrTimedOut):
		fmt.Printf("✓ Timed out after %v (errno %d)\n", waited.Round(time.Millisecond), lwp.Errno(result))
	case result == nil:
		fmt.Printf("✓ Unparked after %v\n", waited.Round(time.Millisecond))
	default:
		return cli.Exit(fmt.Sprintf("Failed: %v", result), 1)
	}
	return nil
}

func metricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "Run a worker pool of threads and serve Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":2112",
				Usage: "Listen address for /metrics",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: 4,
				Usage: "Number of worker threads",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Value: 2 * time.Second,
				Usage: "How long to keep the workers busy",
			},
		},
		Action: metricsAction,
	}
}

func metricsAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}

	reg := prom.NewRegistry()
	exporter, err := obs.NewMetricsExporter(cfg.MetricsNamespace, reg, obs.ExporterOptions{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	poller, err := obs.NewSnapshotPoller(cfg.MetricsNamespace, reg, 100*time.Millisecond)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	cfg.Metrics = exporter

	rt, err := lwp.New(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	poller.AddRuntime("demo", rt)
	poller.Start(c.Context)
	defer poller.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: c.String("addr"), Handler: mux}
	go func() {
		_ = server.ListenAndServe()
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	stopAt := time.Now().Add(c.Duration("duration"))
	for i := 0; i < c.Int("workers"); i++ {
		period := time.Duration(i+1) * 10 * time.Millisecond
		id, err := rt.Spawn(func(any) {
			for time.Now().Before(stopAt) {
				_ = rt.ParkTimeout(period, lwp.NoID)
			}
		}, nil, nil, 0)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		_ = rt.SetName(id, fmt.Sprintf("worker-%d", i))
	}

	fmt.Printf("Prometheus endpoint is up at http://127.0.0.1%s/metrics\n", c.String("addr"))
	fmt.Printf("Try: curl -s http://127.0.0.1%s/metrics | grep '^%s_'\n", c.String("addr"), cfg.MetricsNamespace)

	if err := runToCompletion(rt); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	fmt.Printf("✓ Done: %+v\n", rt.Stats())
	return nil
}
