package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/store-dashboard/internal/domain"
	"github.com/spec-kit/store-dashboard/internal/events"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

func TestFromEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := events.Event{
		ID:               "evt-1",
		Type:             events.EventSignInFailed,
		Email:            "ana@example.com",
		TokenFingerprint: "",
		Client:           events.Client{IP: "10.0.0.1", UserAgent: firefoxUA},
		Timestamp:        ts,
		Payload:          &events.FailurePayload{Message: "Credenciais inválidas", Status: 400},
	}

	record := FromEvent(ev)

	assert.Equal(t, "evt-1", record.ID)
	assert.Equal(t, "sign_in_failed", record.Type)
	assert.Equal(t, "ana@example.com", record.Email)
	assert.Equal(t, "10.0.0.1", record.IP)
	assert.Equal(t, "Credenciais inválidas", record.Message)
	assert.Equal(t, ts, record.OccurredAt)
	assert.Contains(t, record.Browser, "Firefox")
	assert.Contains(t, record.OS, "Linux")
}

func TestFromEvent_StoreAdded(t *testing.T) {
	record := FromEvent(events.Event{Type: events.EventStoreAdded, Payload: events.StoreAddedPayload{StoreID: 3, Name: "Loja"}})
	assert.Equal(t, "Loja", record.Message)
	assert.Empty(t, record.Browser)
}

func TestMultiSink(t *testing.T) {
	var got []string
	ok := SinkFunc(func(_ context.Context, r domain.ActivityRecord) error {
		got = append(got, r.ID)
		return nil
	})
	boom := errors.New("boom")
	failing := SinkFunc(func(context.Context, domain.ActivityRecord) error { return boom })

	err := MultiSink{failing, nil, ok}.Write(context.Background(), domain.ActivityRecord{ID: "r1"})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"r1"}, got)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sink := LogSink{Logger: zap.New(core)}

	require.NoError(t, sink.Write(context.Background(), domain.ActivityRecord{ID: "r1", Type: "signed_in", UserID: 7}))

	entries := logs.FilterMessage("session activity").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].ContextMap()["user_id"])
}

type fakeRepo struct {
	created []domain.ActivityRecord
}

func (f *fakeRepo) Create(_ context.Context, r *domain.ActivityRecord) error {
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeRepo) ListByUser(context.Context, int64, int) ([]domain.ActivityRecord, error) {
	return f.created, nil
}

func TestPostgresSink_DelegatesToRepository(t *testing.T) {
	repo := &fakeRepo{}
	require.NoError(t, NewPostgresSink(repo).Write(context.Background(), domain.ActivityRecord{ID: "r1"}))
	require.Len(t, repo.created, 1)
	assert.Equal(t, "r1", repo.created[0].ID)
}
