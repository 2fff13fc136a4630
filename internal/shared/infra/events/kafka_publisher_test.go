package events

import (
	"context"
	"errors"
	"testing"

	sharedEvents "github.com/davicafu/metamood/internal/shared/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_UsesPartitionKey(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	evt, err := sharedEvents.NewIntegrationEvent("track.upserted", "abc", map[string]string{"name": "x"})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), evt))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("abc"), w.msgs[0].Key)
	assert.Contains(t, string(w.msgs[0].Value), `"type":"track.upserted"`)
}

func TestKafkaPublisher_PropagatesWriterError(t *testing.T) {
	w := &captureWriter{err: errors.New("broker down")}
	p := NewKafkaPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), map[string]string{})
	assert.EqualError(t, err, "broker down")
}
