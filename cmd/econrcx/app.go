package main

import (
	"context"

	"codeberg.org/mutker/econrcx/internal/bus"
	"codeberg.org/mutker/econrcx/internal/config"
	"codeberg.org/mutker/econrcx/internal/diagnostics"
	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	"codeberg.org/mutker/econrcx/internal/telemetry"
)

// app routes each batch to the monitor owning its device topic. Batches are
// handled one at a time on the caller's goroutine.
type app struct {
	monitors  map[string]*econ.Monitor
	sinks     bus.Sink
	telemetry telemetry.Collector
	log       logger.Logger
}

func newApp(cfg *config.Config, topics []string, sinks bus.Sink, collector telemetry.Collector, log logger.Logger, opts ...econ.Option) (*app, error) {
	a := &app{
		monitors:  make(map[string]*econ.Monitor, len(topics)),
		sinks:     sinks,
		telemetry: collector,
		log:       log,
	}

	settings := cfg.Settings()
	dxConfig := cfg.Diagnostics()
	for _, topic := range topics {
		monitorOpts := append([]econ.Option{econ.WithLogger(log.With(topic))}, opts...)
		m, err := econ.NewMonitor(
			settings,
			diagnostics.NewTemperatureSensor(dxConfig),
			diagnostics.Downstream(dxConfig),
			monitorOpts...,
		)
		if err != nil {
			return nil, err
		}
		a.monitors[topic] = m
	}

	return a, nil
}

func (a *app) run(ctx context.Context, batches <-chan econ.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			a.handle(ctx, batch)
		}
	}
}

func (a *app) handle(ctx context.Context, batch econ.Batch) {
	m, ok := a.monitors[batch.Topic]
	if !ok {
		a.log.Warn().Str("topic", batch.Topic).Msg("Batch for unknown device topic")
		return
	}

	out, err := m.Handle(batch)
	if err != nil {
		if e, ok := err.(errors.Error); ok {
			a.log.ErrorWithCode(e).Str("topic", batch.Topic).Msg("Cycle aborted")
		} else {
			a.log.Error().Err(err).Str("topic", batch.Topic).Msg("Cycle aborted")
		}
		return
	}

	if len(out.Records) > 0 {
		if err := a.sinks.Publish(ctx, out.Records); err != nil {
			a.log.Error().Err(err).
				Str("topic", batch.Topic).
				Int("records", len(out.Records)).
				Msg("Failed to publish records")
		}
	}

	if err := a.telemetry.Record(ctx, telemetry.FromOutcome(batch.Topic, out)); err != nil {
		a.log.Warn().Err(err).Msg("Failed to record telemetry")
	}
}

func (a *app) close() error {
	return errors.Join(a.sinks.Close(), a.telemetry.Close())
}

// closeCollector closes a collector that never made it into an app
func closeCollector(c telemetry.Collector, log logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close telemetry")
	}
}
