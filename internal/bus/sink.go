package bus

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"
)

// Sink receives the diagnostic records of one cycle at a time
type Sink interface {
	Publish(ctx context.Context, records []econ.Record) error
	Close() error
}

// LogSink writes each record as a structured log event
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log.With("records")}
}

func (s *LogSink) Publish(_ context.Context, records []econ.Record) error {
	for _, rec := range records {
		s.logRecord(rec)
	}

	return nil
}

func (s *LogSink) logRecord(rec econ.Record) {
	ev := s.log.Info().
		Str("id", rec.ID).
		Str("kind", string(rec.Kind)).
		Str("analysis", rec.AnalysisName).
		Time("timestamp", rec.Timestamp).
		Str("diagnostic", rec.Diagnostic).
		Str("sensitivity", rec.Sensitivity)
	if rec.Code != nil {
		ev = ev.Float64("code", *rec.Code)
	}
	if rec.EnergyImpact != nil {
		ev = ev.Float64("energy_impact", *rec.EnergyImpact)
	}
	ev.Msg(rec.Message)
}

func (*LogSink) Close() error { return nil }

// MQTTSink publishes records as JSON to a topic derived from the analysis name
type MQTTSink struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTSink publishes on topic, where "{analysis}" is replaced by the
// record's analysis name
func NewMQTTSink(client mqtt.Client, topic string, qos byte) *MQTTSink {
	return &MQTTSink{client: client, topic: topic, qos: qos}
}

func (s *MQTTSink) Publish(ctx context.Context, records []econ.Record) error {
	for _, rec := range records {
		if err := s.publish(ctx, rec); err != nil {
			return err
		}
	}

	return nil
}

func (s *MQTTSink) publish(ctx context.Context, rec econ.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.New().Wrap(errors.ErrPublishRecord, err)
	}

	topic := strings.ReplaceAll(s.topic, "{analysis}", rec.AnalysisName)
	if err := wait(ctx, s.client.Publish(topic, s.qos, false, payload)); err != nil {
		return errors.New().Wrap(errors.ErrPublishRecord, err).WithData(topic)
	}

	return nil
}

// Close is a no-op, the client is shared with the subscriber
func (*MQTTSink) Close() error { return nil }

// kafkaBatchTimeout bounds how long the writer waits to fill a batch
const kafkaBatchTimeout = 10 * time.Millisecond

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink writes records as JSON keyed by analysis name
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return newKafkaSink(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           kafkaBatchTimeout,
		AllowAutoTopicCreation: false,
	})
}

func newKafkaSink(w messageWriter) *KafkaSink {
	return &KafkaSink{writer: w}
}

// Publish writes all records of a cycle in a single batch
func (s *KafkaSink) Publish(ctx context.Context, records []econ.Record) error {
	if len(records) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return errors.New().Wrap(errors.ErrPublishRecord, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(rec.AnalysisName),
			Value: payload,
			Time:  rec.Timestamp,
		})
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return errors.New().Wrap(errors.ErrPublishRecord, err)
	}

	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// Sinks fans a cycle's records out to every sink. A failing sink does not stop the
// others; all failures are returned together.
type Sinks []Sink

func (ss Sinks) Publish(ctx context.Context, records []econ.Record) error {
	var errs []error
	for _, s := range ss {
		if err := s.Publish(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (ss Sinks) Close() error {
	var errs []error
	for _, s := range ss {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
