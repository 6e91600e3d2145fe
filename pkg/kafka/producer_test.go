package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}

func TestPublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip")

	err := p.Publish(context.Background(), "snapshots", []byte("AAA"), map[string]int{"rows": 3})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "snapshots", w.msgs[0].Topic)
	assert.Equal(t, []byte("AAA"), w.msgs[0].Key)
	assert.JSONEq(t, `{"rows":3}`, string(w.msgs[0].Value))

	require.NoError(t, p.PublishMessage(context.Background(), "logs", "plain"))
	assert.Equal(t, "plain", string(w.msgs[1].Value))
	assert.Nil(t, w.msgs[1].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishBatch(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip")

	require.NoError(t, p.PublishBatch(context.Background(), "t", nil))
	assert.Empty(t, w.msgs)

	err := p.PublishBatch(context.Background(), "t", []Message{{Value: []byte("a")}, {Value: []byte("b")}})
	require.NoError(t, err)
	assert.Len(t, w.msgs, 2)
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newProducer(&fakeWriter{err: boom}, "gzip")

	err := p.Publish(context.Background(), "t", nil, "x")
	assert.ErrorIs(t, err, boom)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
