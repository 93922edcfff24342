package bus

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"codeberg.org/mutker/econrcx/internal/econ"
	"codeberg.org/mutker/econrcx/internal/errors"
	"codeberg.org/mutker/econrcx/internal/logger"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (*fakeMessage) Duplicate() bool   { return false }
func (*fakeMessage) Qos() byte         { return 0 }
func (*fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string   { return m.topic }
func (*fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte { return m.payload }
func (*fakeMessage) Ack()              {}

type fakeToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (*fakeToken) Wait() bool                       { return true }
func (*fakeToken) WaitTimeout(_ time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient implements only the calls the bus makes
type fakeClient struct {
	mqtt.Client
	published  []published
	subscribed []string
	err        error
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newToken(c.err)
}

func (c *fakeClient) Subscribe(topic string, _ byte, _ mqtt.MessageHandler) mqtt.Token {
	c.subscribed = append(c.subscribed, topic)
	return newToken(c.err)
}

type fakeWriter struct {
	msgs   []kafka.Message
	calls  int
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type failingSink struct{ closed bool }

func (*failingSink) Publish(context.Context, []econ.Record) error { return stderrors.New("down") }

func (s *failingSink) Close() error {
	s.closed = true
	return nil
}

func testRecord() econ.Record {
	code, energy := 11.1, 2.5
	return econ.Record{
		ID:           "id-1",
		Kind:         econ.RecordResult,
		AnalysisName: "rcx",
		Timestamp:    time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
		Diagnostic:   econ.EconCorrectlyOnDx,
		Sensitivity:  "normal",
		Code:         &code,
		EnergyImpact: &energy,
		Message:      "Insufficient outdoor air when economizing",
	}
}

func TestSubscriberEnqueuesDecodedBatches(t *testing.T) {
	s := NewSubscriber(nil, 1, logger.Nop())

	s.handle(nil, &fakeMessage{topic: "devices/a/all", payload: []byte(`{"timestamp": "2024-07-01T00:00:00Z", "points": {"oat": 60}}`)})
	s.handle(nil, &fakeMessage{topic: "devices/a/all", payload: []byte(`not json`)})
	s.handle(nil, &fakeMessage{topic: "devices/b/all", payload: []byte(`{"timestamp": "2024-07-01T00:01:00Z", "points": {}}`)})

	require.Len(t, s.Batches(), 2, "undecodable batch is skipped")
	first := <-s.Batches()
	second := <-s.Batches()
	assert.Equal(t, "devices/a/all", first.Topic)
	assert.Equal(t, "devices/b/all", second.Topic)
}

func TestSubscriberHandleAfterClose(t *testing.T) {
	s := NewSubscriber(nil, 1, logger.Nop())
	for i := 0; i < batchQueueSize; i++ {
		s.handle(nil, &fakeMessage{topic: "t", payload: []byte(`{"timestamp": "2024-07-01T00:00:00Z", "points": {}}`)})
	}
	s.Close()
	s.Close()

	// Queue is full; a closed subscriber must not block
	s.handle(nil, &fakeMessage{topic: "t", payload: []byte(`{"timestamp": "2024-07-01T00:00:00Z", "points": {}}`)})
	assert.Len(t, s.Batches(), batchQueueSize)
}

func TestSubscriberSubscribe(t *testing.T) {
	client := &fakeClient{}
	s := NewSubscriber(client, 1, logger.Nop())

	require.NoError(t, s.Subscribe(context.Background(), "devices/a/all", "devices/b/all"))
	assert.Equal(t, []string{"devices/a/all", "devices/b/all"}, client.subscribed)

	client.err = stderrors.New("not authorized")
	err := s.Subscribe(context.Background(), "devices/c/all")
	code, ok := errors.Code(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrSubscribe, code)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.New(&buf))

	require.NoError(t, sink.Publish(context.Background(), []econ.Record{testRecord()}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "records", line["component"])
	assert.Equal(t, econ.EconCorrectlyOnDx, line["diagnostic"])
	assert.Equal(t, "normal", line["sensitivity"])
	assert.InDelta(t, 11.1, line["code"], 1e-9)
	assert.Equal(t, "Insufficient outdoor air when economizing", line["message"])
}

func TestMQTTSink(t *testing.T) {
	client := &fakeClient{}
	sink := NewMQTTSink(client, "record/{analysis}/econ", 1)

	require.NoError(t, sink.Publish(context.Background(), []econ.Record{testRecord()}))
	require.Len(t, client.published, 1)
	assert.Equal(t, "record/rcx/econ", client.published[0].topic)
	assert.Equal(t, byte(1), client.published[0].qos)

	var rec econ.Record
	require.NoError(t, json.Unmarshal(client.published[0].payload, &rec))
	assert.Equal(t, testRecord(), rec)

	client.err = stderrors.New("timeout")
	code, ok := errors.Code(sink.Publish(context.Background(), []econ.Record{testRecord()}))
	require.True(t, ok)
	assert.Equal(t, errors.ErrPublishRecord, code)
}

func TestKafkaSink(t *testing.T) {
	w := &fakeWriter{}
	sink := newKafkaSink(w)

	require.NoError(t, sink.Publish(context.Background(), []econ.Record{testRecord()}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("rcx"), w.msgs[0].Key)
	assert.Equal(t, testRecord().Timestamp, w.msgs[0].Time)

	w.err = stderrors.New("leader not available")
	code, ok := errors.Code(sink.Publish(context.Background(), []econ.Record{testRecord()}))
	require.True(t, ok)
	assert.Equal(t, errors.ErrPublishRecord, code)

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestKafkaSinkWritesCycleInOneBatch(t *testing.T) {
	w := &fakeWriter{}
	sink := newKafkaSink(w)

	records := make([]econ.Record, 15)
	for i := range records {
		records[i] = testRecord()
		records[i].ID = strconv.Itoa(i)
	}

	require.NoError(t, sink.Publish(context.Background(), records))
	assert.Equal(t, 1, w.calls)
	require.Len(t, w.msgs, 15)

	var last econ.Record
	require.NoError(t, json.Unmarshal(w.msgs[14].Value, &last))
	assert.Equal(t, "14", last.ID)

	require.NoError(t, sink.Publish(context.Background(), nil))
	assert.Equal(t, 1, w.calls, "empty cycles do not reach the writer")
}

func TestMQTTSinkPublishesEachRecord(t *testing.T) {
	client := &fakeClient{}
	sink := NewMQTTSink(client, "record/{analysis}", 0)

	require.NoError(t, sink.Publish(context.Background(), []econ.Record{testRecord(), testRecord()}))
	assert.Len(t, client.published, 2)
}

func TestSinksFanOut(t *testing.T) {
	w := &fakeWriter{}
	failing := &failingSink{}
	sinks := Sinks{failing, newKafkaSink(w)}

	err := sinks.Publish(context.Background(), []econ.Record{testRecord()})
	require.Error(t, err)
	assert.Len(t, w.msgs, 1, "a failing sink does not stop the others")

	require.NoError(t, sinks.Close())
	assert.True(t, failing.closed)
	assert.True(t, w.closed)
}
