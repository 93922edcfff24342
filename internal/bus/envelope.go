package bus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
)

// envelope is the JSON payload a device publishes on its "all" topic. The
// timestamp is read from "timestamp" or, failing that, the "Date" header.
type envelope struct {
	Timestamp string                     `json:"timestamp"`
	Headers   map[string]string          `json:"headers"`
	Points    map[string]json.RawMessage `json:"points"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999Z07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the timestamp formats devices are known to publish.
// Timestamps without a zone are taken as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// Decode turns a device payload into a reading batch. Points published as
// null are kept with a nil value; booleans map onto 0 and 1.
func Decode(topic string, payload []byte) (econ.Batch, error) {
	errFactory := errors.New()

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return econ.Batch{}, errFactory.Wrap(errors.ErrDecodeBatch, err)
	}

	raw := env.Timestamp
	if raw == "" {
		raw = env.Headers["Date"]
	}
	if raw == "" {
		return econ.Batch{}, errFactory.WithData(errors.ErrDecodeBatch, "missing timestamp")
	}
	ts, err := ParseTimestamp(raw)
	if err != nil {
		return econ.Batch{}, errFactory.Wrap(errors.ErrDecodeBatch, err)
	}

	values := make(map[string]*float64, len(env.Points))
	for name, msg := range env.Points {
		v, err := pointValue(msg)
		if err != nil {
			return econ.Batch{}, errFactory.Wrap(errors.ErrDecodeBatch, fmt.Errorf("point %s: %w", name, err))
		}
		values[name] = v
	}

	return econ.Batch{Topic: topic, Timestamp: ts, Values: values}, nil
}

func pointValue(msg json.RawMessage) (*float64, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return nil, nil
	}

	var b bool
	if err := json.Unmarshal(msg, &b); err == nil {
		v := 0.0
		if b {
			v = 1
		}
		return &v, nil
	}

	var v float64
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, err
	}

	return &v, nil
}
