package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleScan/internal/domain/models"
	"CandleScan/pkg/kafka"
)

func TestSignalRows(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	res := &models.ScanResult{
		Pattern:   "CDLDOJI",
		ScannedAt: at,
		Outcomes: []models.Outcome{
			{Symbol: "AAA", Pattern: "CDLDOJI", Signal: models.SignalBullish, Value: 100},
			{Symbol: "BBB", Pattern: "CDLDOJI", Err: errors.New("empty file")},
		},
	}

	rows := signalRows("run-1", res)
	require.Len(t, rows, 2)
	assert.Equal(t, signalRow{ScanID: "run-1", ScannedAt: at.UTC(), Pattern: "CDLDOJI", Symbol: "AAA", Signal: "bullish", Value: 100}, rows[0])
	assert.Equal(t, "failed", rows[1].Signal)
	assert.Equal(t, "empty file", rows[1].Error)
}

func TestNoopSignalRecorder(t *testing.T) {
	var r NoopSignalRecorder
	assert.NoError(t, r.Record(context.Background(), &models.ScanResult{}))
	assert.NoError(t, r.Close())
}

type fakeProducer struct {
	calls    int
	topic    string
	messages []kafka.Message
}

func (p *fakeProducer) PublishBatch(_ context.Context, topic string, messages []kafka.Message) error {
	p.calls++
	p.topic, p.messages = topic, messages
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func TestKafkaEventPublisherKeysBySymbol(t *testing.T) {
	fp := &fakeProducer{}
	pub := NewKafkaEventPublisher(fp, "candlescan.snapshots")
	events := []models.SnapshotEvent{{Symbol: "MSFT", Rows: 10}, {Symbol: "BRK.B", Rows: 7}}

	require.NoError(t, pub.PublishSnapshots(context.Background(), events))
	assert.Equal(t, 1, fp.calls)
	assert.Equal(t, "candlescan.snapshots", fp.topic)
	require.Len(t, fp.messages, 2)
	assert.Equal(t, []byte("MSFT"), fp.messages[0].Key)
	assert.Equal(t, events[0], fp.messages[0].Value)
	assert.Equal(t, []byte("BRK.B"), fp.messages[1].Key)

	require.NoError(t, pub.PublishSnapshots(context.Background(), nil))
	assert.Equal(t, 1, fp.calls, "empty runs write nothing")
}
