package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"i4.energy/across/qube/engine"
	"i4.energy/across/qube/gnss"
	"i4.energy/across/qube/swarm"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML configuration file (default qube.yaml if present)")
	flag.String("tile-port", "/dev/ttyUSB0", "Serial port of the satellite modem")
	flag.Int("tile-baud", 115200, "Baud rate of the satellite modem")
	flag.String("tile-variant", "tile", "Modem command set (tile, m138)")
	flag.Int("host-id", 0, "Host identifier reported in position messages")
	flag.String("gps-port", "", "Serial port of the GNSS receiver (empty to disable)")
	flag.Int("gps-baud", 9600, "Baud rate of the GNSS receiver")
	flag.Bool("gps-pps", false, "Follow the receiver's PPS output on the DCD line")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Bool("console", false, "Start the interactive operator console")
	flag.String("mqtt-broker", "", "MQTT broker URL (empty to disable the bridge)")
	flag.Parse()

	path, optional := *configPath, false
	if path == "" {
		path, optional = "qube.yaml", true
	}

	config, err := LoadConfig(WithDefaults(), WithFile(path, optional), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if err := run(config, logger); err != nil {
		logger.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

func run(config *Config, logger *slog.Logger) error {
	variant, err := swarm.ParseVariant(config.TileVariant)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	metrics := engine.NewMetrics(registry)

	// The console owns SIGINT while it runs.
	signals := []os.Signal{syscall.SIGTERM}
	if !config.Console {
		signals = append(signals, syscall.SIGINT)
	}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tile, err := swarm.New(variant, swarm.Config{
		Device: engine.DeviceConfig{
			ResponseTimeout: 5 * time.Second,
			Logger:          logger.With("component", "device"),
			Metrics:         metrics,
		},
		HostID: config.HostID,
	})
	if err != nil {
		return err
	}

	tileConfig, err := engine.NewConfigBuilder().
		WithDialer(engine.SerialDialer{
			PortName: config.TilePort,
			BaudRate: config.TileBaud,
		}).
		WithLogger(logger.With("component", "link")).
		Build()
	if err != nil {
		return err
	}
	tileLink, err := engine.NewLink(ctx, tile, tileConfig)
	if err != nil {
		return err
	}
	defer tileLink.Close()

	links := []*engine.Link{tileLink}
	executors := map[string]Executor{tile.Name(): tile}
	summaries := map[string]Summarizer{tile.Name(): tile}

	if config.GPSPort != "" {
		gps, err := gnss.New(engine.DeviceConfig{
			Logger:  logger.With("component", "device"),
			Metrics: metrics,
		})
		if err != nil {
			return err
		}

		var dialer engine.Dialer = engine.SerialDialer{
			PortName: config.GPSPort,
			BaudRate: config.GPSBaud,
		}
		if config.GPSPPS {
			dialer = ppsDialer{
				SerialDialer: dialer.(engine.SerialDialer),
				Pulse:        gps.TimeUpdate,
				Logger:       logger.With("component", "pps"),
			}
		}

		gpsConfig, err := engine.NewConfigBuilder().
			WithDialer(dialer).
			WithLogger(logger.With("component", "link")).
			Build()
		if err != nil {
			return err
		}
		gpsLink, err := engine.NewLink(ctx, gps, gpsConfig)
		if err != nil {
			return err
		}
		defer gpsLink.Close()

		links = append(links, gpsLink)
		executors[gps.Name()] = gps
		summaries[gps.Name()] = gps
	}

	logger.Info("Starting Qube", "modem", variant.Name, "port", config.TilePort, "gps", config.GPSPort)

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger:   logger.With("component", "server"),
			Modem:    tile,
			Devices:  summaries,
			Gatherer: registry,
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range links {
		g.Go(func() error {
			if err := l.Loop(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Closing HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if config.MQTT.Broker != "" {
		bridge := NewBridge(config.MQTT, tile, logger.With("component", "mqtt"))
		g.Go(func() error {
			return bridge.Run(gctx)
		})
	}

	if config.Console {
		g.Go(func() error {
			defer cancel()
			return NewConsole(executors, os.Stdout, logger.With("component", "console")).Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("Shutting down")
	return err
}
