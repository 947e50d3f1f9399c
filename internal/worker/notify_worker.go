package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edumitra/edumitra-backend/internal/config"
	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	NotifyBatchSize    = 50
	NotifyBatchTimeout = 2 * time.Second
	NotifyPollTimeout  = 1 * time.Second
)

// notifyStore is the persistence slice the worker needs; satisfied by
// repository.NotificationRepository.
type notifyStore interface {
	InsertBatch(ctx context.Context, batch []*model.Notification) error
}

// NotifyWorker drains the notify queue, persists notification records in
// batches, and republishes each event on its institute's push channel for
// the external delivery bridge.
type NotifyWorker struct {
	store notifyStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewNotifyWorker creates a new NotifyWorker.
func NewNotifyWorker(store notifyStore, rdb *redis.Client, log zerolog.Logger) *NotifyWorker {
	return &NotifyWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "notify_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *NotifyWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotifyWorker started")

	batch := make([]*model.NotifyEvent, 0, NotifyBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= NotifyBatchSize || time.Since(lastFlush) >= NotifyBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, NotifyPollTimeout, config.WorkerKey.NotifyEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var event model.NotifyEvent
			if err := json.Unmarshal([]byte(item[1]), &event); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &event)
		}
	}
}

// flushSafe persists the batch, then publishes. A failed insert requeues
// the whole batch; publish failures are logged only, since the persisted
// record is the source of truth and the bridge can replay from it.
func (w *NotifyWorker) flushSafe(ctx context.Context, batch []*model.NotifyEvent) {
	if len(batch) == 0 {
		return
	}

	records := make([]*model.Notification, 0, len(batch))
	for _, event := range batch {
		records = append(records, &model.Notification{
			InstituteID: event.InstituteID,
			Kind:        event.Kind,
			Title:       event.Title,
			Body:        event.Body,
			RefID:       event.RefID,
		})
	}

	if err := w.store.InsertBatch(ctx, records); err != nil {
		w.log.Warn().Err(err).Msg("batch insert failed — requeueing")
		for _, event := range batch {
			raw, _ := json.Marshal(event)
			w.rdb.RPush(ctx, config.WorkerKey.NotifyEventsQueue, raw)
		}
		return
	}

	w.publishBatch(ctx, batch)
}

// publishBatch pushes every event onto its institute's push channel in
// one pipeline round trip.
func (w *NotifyWorker) publishBatch(ctx context.Context, batch []*model.NotifyEvent) {
	pipe := w.rdb.Pipeline()

	for _, event := range batch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		pipe.Publish(ctx, config.CacheKey.NotifyChannel(event.InstituteCode), payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("publish pipeline failed")
	}
}
