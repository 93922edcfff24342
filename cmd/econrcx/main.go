package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/econrcx/internal/bus"
	"codeberg.org/mutker/econrcx/internal/config"
	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	"codeberg.org/mutker/econrcx/internal/pid"
	"codeberg.org/mutker/econrcx/internal/telemetry"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const disconnectQuiesce = 250 // milliseconds

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			fmt.Printf("invalid log level: %v\n", err)
			os.Exit(1)
		}
		logger.SetLogLevel(level)
	}
	logger.Debug().Msg("Config loaded")

	if err := run(cfg); err != nil {
		if e, ok := err.(errors.Error); ok {
			logger.ErrorWithCode(e).Msg("Exiting with error")
		} else {
			logger.Error().Err(err).Msg("Exiting with error")
		}
		os.Exit(1)
	}
	logger.Info().Msg("Exiting...")
}

func run(cfg *config.Config) error {
	errFactory := errors.New()

	topics := cfg.Topics()
	if len(topics) == 0 {
		return errFactory.WithData(errors.ErrMissingConfig, "no device units configured")
	}

	if err := pid.Write(); err != nil {
		if errors.HasCode(err, errors.ErrAlreadyRunning) {
			logger.Warn().Str("pid_file", pid.Path()).Msg("Remove the PID file if no other monitor is running")
		}
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	log := logger.Default()

	client := bus.NewClient(bus.Options{
		URL:      cfg.Broker.URL,
		ClientID: cfg.Broker.ClientID,
		Username: cfg.Broker.Username,
		Password: cfg.Broker.Password,
		QoS:      byte(cfg.Broker.QoS),
	}, log.With("mqtt"))

	connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
	defer connectCancel()
	if err := bus.Connect(connectCtx, client); err != nil {
		return err
	}
	defer client.Disconnect(disconnectQuiesce)
	logger.Info().Str("broker", cfg.Broker.URL).Msg("Connected to broker")

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		DBPath:        cfg.Telemetry.DBPath,
		BatchSize:     cfg.Telemetry.BatchSize,
		FlushInterval: time.Duration(cfg.Telemetry.FlushInterval) * time.Second,
	}, log)
	if err != nil {
		return errFactory.Wrap(errors.ErrInitApp, err)
	}

	a, err := newApp(cfg, topics, buildSinks(cfg, client, log), collector, log)
	if err != nil {
		closeCollector(collector, log)
		return errFactory.Wrap(errors.ErrInitApp, err)
	}
	defer func() {
		if err := a.close(); err != nil {
			logger.Error().Err(err).Msg("Failed to shut down cleanly")
		}
	}()

	sub := bus.NewSubscriber(client, byte(cfg.Broker.QoS), log)
	defer sub.Close()
	if err := sub.Subscribe(ctx, topics...); err != nil {
		return err
	}

	logger.Info().
		Str("analysis", cfg.AnalysisName).
		Int("devices", len(topics)).
		Strs("sinks", cfg.Output.Sinks).
		Msg("Monitoring economizers")

	if err := a.run(ctx, sub.Batches()); err != nil {
		return errFactory.Wrap(errors.ErrMainLoop, err)
	}

	return nil
}

func buildSinks(cfg *config.Config, client mqtt.Client, log logger.Logger) bus.Sinks {
	var sinks bus.Sinks
	for _, name := range cfg.Output.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, bus.NewLogSink(log))
		case config.SinkMQTT:
			sinks = append(sinks, bus.NewMQTTSink(client, cfg.Output.MQTTTopic, byte(cfg.Broker.QoS)))
		case config.SinkKafka:
			sinks = append(sinks, bus.NewKafkaSink(cfg.Output.KafkaBrokers, cfg.Output.KafkaTopic))
		}
	}

	return sinks
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
