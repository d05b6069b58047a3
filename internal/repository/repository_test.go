package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"RateBot/internal/domain/models"
	"RateBot/internal/repository"
	"RateBot/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestFileStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "line_report.png")
	store := repository.NewFileStore(path, logger.Nop())

	got, err := store.Save(context.Background(), &models.ReportArtifact{PNG: []byte("first")})
	require.NoError(t, err)
	require.Equal(t, path, got)

	_, err = store.Save(context.Background(), &models.ReportArtifact{PNG: []byte("second")})
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileStoreRejectsEmpty(t *testing.T) {
	store := repository.NewFileStore(filepath.Join(t.TempDir(), "r.png"), logger.Nop())
	_, err := store.Save(context.Background(), &models.ReportArtifact{})
	require.Error(t, err)
}

type fakeProducer struct {
	topic string
	key   []byte
	value interface{}
	err   error
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

func TestKafkaRunEventSink(t *testing.T) {
	p := &fakeProducer{}
	sink := repository.NewKafkaRunEventSink(p, "report.events")

	ev := models.RunEvent{RunID: "r1", SenderID: "U1", State: "delivered"}
	require.NoError(t, sink.Emit(context.Background(), ev))
	require.Equal(t, "report.events", p.topic)
	require.Equal(t, []byte("U1"), p.key)
	require.Equal(t, ev, p.value)

	p.err = errors.New("broker down")
	err := sink.Emit(context.Background(), ev)
	require.ErrorIs(t, err, p.err)
	require.Contains(t, err.Error(), "r1")
}
