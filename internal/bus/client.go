// Package bus connects the monitor to the message bus: device batches come
// in over MQTT and diagnostic records go out through sinks.
package bus

import (
	"context"
	"time"

	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const connectTimeout = 10 * time.Second

// Options configures the MQTT client
type Options struct {
	URL      string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// NewClient builds a paho client that reconnects on its own
func NewClient(o Options, log logger.Logger) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.URL)
	opts.SetClientID(o.ClientID)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("Connection to broker lost")
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		log.Info().Str("broker", o.URL).Msg("Reconnecting to broker")
	})

	return mqtt.NewClient(opts)
}

// Connect opens the client connection, giving up when ctx is done
func Connect(ctx context.Context, client mqtt.Client) error {
	if err := wait(ctx, client.Connect()); err != nil {
		return errors.New().Wrap(errors.ErrBrokerConnect, err)
	}

	return nil
}

func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
