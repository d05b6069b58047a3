package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	require.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("zstd"), WithAsync(true))
	require.NoError(t, err)
	require.Equal(t, "zstd", p.comp)
	require.True(t, p.writer.Async)
	require.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	require.NoError(t, p.Close())
}

func TestNewProducerWriterTuning(t *testing.T) {
	p, err := NewProducer(
		WithBrokers([]string{"localhost:9092"}),
		WithMaxAttempts(5),
		WithBatchTimeout(20*time.Millisecond),
	)
	require.NoError(t, err)
	require.Equal(t, 5, p.writer.MaxAttempts)
	require.Equal(t, 20*time.Millisecond, p.writer.BatchTimeout)
	require.NoError(t, p.Close())
}

func TestParseCompression(t *testing.T) {
	require.Equal(t, kafka.Gzip, parseCompression("gzip"))
	require.Equal(t, kafka.Lz4, parseCompression("lz4"))
	require.Equal(t, kafka.Snappy, parseCompression("unknown"))
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]string{"state": "delivered"})
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"delivered"}`, string(b))

	b, err = encodeValue("raw")
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), b)
}
