package bus

import (
	"context"
	"sync"

	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const batchQueueSize = 64

// Subscriber receives device batches. The paho callback only decodes and
// enqueues; the consumer of Batches processes them one at a time.
type Subscriber struct {
	client  mqtt.Client
	qos     byte
	log     logger.Logger
	batches chan econ.Batch
	done    chan struct{}
	once    sync.Once
}

func NewSubscriber(client mqtt.Client, qos byte, log logger.Logger) *Subscriber {
	return &Subscriber{
		client:  client,
		qos:     qos,
		log:     log.With("subscriber"),
		batches: make(chan econ.Batch, batchQueueSize),
		done:    make(chan struct{}),
	}
}

// Batches returns the channel decoded batches are delivered on, in arrival order
func (s *Subscriber) Batches() <-chan econ.Batch {
	return s.batches
}

// Subscribe registers every topic with the broker
func (s *Subscriber) Subscribe(ctx context.Context, topics ...string) error {
	errFactory := errors.New()

	for _, topic := range topics {
		if err := wait(ctx, s.client.Subscribe(topic, s.qos, s.handle)); err != nil {
			return errFactory.Wrap(errors.ErrSubscribe, err).WithData(topic)
		}
		s.log.Info().Str("topic", topic).Msg("Subscribed to device topic")
	}

	return nil
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	batch, err := Decode(msg.Topic(), msg.Payload())
	if err != nil {
		if e, ok := err.(errors.Error); ok {
			s.log.ErrorWithCode(e).Str("topic", msg.Topic()).Msg("Skipping batch")
		}
		return
	}

	select {
	case s.batches <- batch:
	case <-s.done:
	}
}

// Close stops delivery. Batches already queued stay readable.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}
