package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type memNotifyStore struct {
	mu     sync.Mutex
	items  []*model.Notification
	failN  int // fail the first N InsertBatch calls
	nCalls int
}

func (s *memNotifyStore) InsertBatch(_ context.Context, batch []*model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nCalls++
	if s.nCalls <= s.failN {
		return errors.New("storage down")
	}
	s.items = append(s.items, batch...)
	return nil
}

func (s *memNotifyStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func newWorkerFixture(t *testing.T, store *memNotifyStore) (*NotifyWorker, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewNotifyWorker(store, rdb, zerolog.Nop()), rdb
}

func enqueue(t *testing.T, rdb *redis.Client, event *model.NotifyEvent) {
	t.Helper()
	raw, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := rdb.RPush(context.Background(), config.WorkerKey.NotifyEventsQueue, raw).Err(); err != nil {
		t.Fatalf("rpush: %v", err)
	}
}

func TestWorkerPersistsAndPublishes(t *testing.T) {
	store := &memNotifyStore{}
	w, rdb := newWorkerFixture(t, store)
	ctx, cancel := context.WithCancel(context.Background())

	sub := rdb.Subscribe(ctx, config.CacheKey.NotifyChannel("dps"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	enqueue(t, rdb, &model.NotifyEvent{
		InstituteID:   1,
		InstituteCode: "dps",
		Kind:          model.NotificationQuizStarted,
		Title:         "Algebra Basics",
		RefID:         "ref-1",
	})

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	msg, err := sub.ReceiveTimeout(ctx, 5*time.Second)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got model.NotifyEvent
	if err := json.Unmarshal([]byte(msg.(*redis.Message).Payload), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != model.NotificationQuizStarted || got.Title != "Algebra Basics" {
		t.Fatalf("published event = %+v", got)
	}

	cancel()
	<-done

	if store.count() != 1 {
		t.Fatalf("persisted %d records, want 1", store.count())
	}
}

func TestWorkerRequeuesOnInsertFailure(t *testing.T) {
	store := &memNotifyStore{failN: 1}
	w, rdb := newWorkerFixture(t, store)
	ctx, cancel := context.WithCancel(context.Background())

	enqueue(t, rdb, &model.NotifyEvent{
		InstituteID:   1,
		InstituteCode: "dps",
		Kind:          model.NotificationPostPublished,
		Title:         "Sports Day",
		RefID:         "ref-2",
	})

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// First flush fails and requeues; the retry must land in storage.
	deadline := time.After(10 * time.Second)
	for store.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("record never persisted after requeue")
		case <-time.After(100 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if store.count() != 1 {
		t.Fatalf("persisted %d records, want 1", store.count())
	}
}

func TestWorkerFlushesRemainderOnShutdown(t *testing.T) {
	store := &memNotifyStore{}
	w, rdb := newWorkerFixture(t, store)
	ctx, cancel := context.WithCancel(context.Background())

	for i := 0; i < 3; i++ {
		enqueue(t, rdb, &model.NotifyEvent{
			InstituteID:   1,
			InstituteCode: "dps",
			Kind:          model.NotificationQuizEnded,
			Title:         "Geometry Review",
			RefID:         "ref-3",
		})
	}

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Give the loop time to drain the queue into its batch, then stop it
	// before the batch timeout would flush.
	time.Sleep(500 * time.Millisecond)
	cancel()
	<-done

	if store.count() != 3 {
		t.Fatalf("persisted %d records, want 3", store.count())
	}
}
