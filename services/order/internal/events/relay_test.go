package events

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/restaurant_orders/pkg/logging"
	"github.com/Skotchmaster/restaurant_orders/services/order/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	events    []models.OutboxEvent
	published map[uuid.UUID]bool
}

func newMemStore(events ...models.OutboxEvent) *memStore {
	return &memStore{events: events, published: map[uuid.UUID]bool{}}
}

func (s *memStore) PendingEvents(_ context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OutboxEvent
	for _, ev := range s.events {
		if len(out) == limit {
			break
		}
		if !s.published[ev.ID] && ev.Attempts < maxAttempts {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *memStore) MarkPublished(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[id] = true
	return nil
}

func (s *memStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Attempts++
			s.events[i].LastError = &reason
		}
	}
	return nil
}

func (s *memStore) publishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type flakyPublisher struct {
	failFor map[uuid.UUID]bool
	sent    []uuid.UUID
}

func (p *flakyPublisher) Publish(_ context.Context, ev models.OutboxEvent) error {
	if p.failFor[ev.ID] {
		return errors.New("leader not available")
	}
	p.sent = append(p.sent, ev.ID)
	return nil
}

func (p *flakyPublisher) Close() error { return nil }

func event(eventType string) models.OutboxEvent {
	return models.OutboxEvent{ID: uuid.New(), AggregateID: uuid.New(), EventType: eventType, Payload: []byte(`{}`)}
}

func TestRelay_Flush(t *testing.T) {
	t.Parallel()

	ok1, bad, ok2 := event(models.EventOrderCreated), event(models.EventOrderItemsAdded), event(models.EventOrderStatusChanged)
	store := newMemStore(ok1, bad, ok2)
	pub := &flakyPublisher{failFor: map[uuid.UUID]bool{bad.ID: true}}
	relay := NewRelay(store, pub, RelayConfig{BatchSize: 10, MaxAttempts: 2}, logging.NewWithWriter(&bytes.Buffer{}, "debug"))

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []uuid.UUID{ok1.ID, ok2.ID}, pub.sent)
	assert.Equal(t, 1, store.events[1].Attempts)

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, store.events[1].Attempts)

	// attempts exhausted, the event is no longer picked up
	pending, err := store.PendingEvents(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRelay_BatchSize(t *testing.T) {
	t.Parallel()

	store := newMemStore(event("a"), event("b"), event("c"))
	pub := &flakyPublisher{}
	relay := NewRelay(store, pub, RelayConfig{BatchSize: 2}, logging.NewWithWriter(&bytes.Buffer{}, "info"))

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	store := newMemStore(event(models.EventOrderCreated))
	pub := &flakyPublisher{}
	relay := NewRelay(store, pub, RelayConfig{PollInterval: 10 * time.Millisecond}, logging.NewWithWriter(&bytes.Buffer{}, "info"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		select {
		case <-done:
			return false
		default:
		}
		return store.publishedCount() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestLogPublisher(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &LogPublisher{Log: logging.NewWithWriter(&buf, "info")}
	ev := event(models.EventOrderCreated)

	require.NoError(t, p.Publish(context.Background(), ev))
	require.NoError(t, p.Close())
	assert.Contains(t, buf.String(), `"event_type":"order_created"`)
	assert.Contains(t, buf.String(), ev.AggregateID.String())
}
