package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dreamshare/dreamshare/internal/services"
	"github.com/dreamshare/dreamshare/pkg/cache"
	"github.com/dreamshare/dreamshare/pkg/logger"
	"github.com/dreamshare/dreamshare/pkg/queue"
)

// Engagement weights per event type.
const (
	dreamCreatedScore = 1
	likeScore         = 2
	commentScore      = 3
)

// TrendingWorker consumes dream events and maintains the trending
// sorted set the API serves from.
type TrendingWorker struct {
	cache      *cache.RedisClient
	consumer   *queue.KafkaConsumer
	maxEntries int
	logger     *logger.Logger
}

func NewTrendingWorker(
	cache *cache.RedisClient,
	consumer *queue.KafkaConsumer,
	maxEntries int,
	logger *logger.Logger,
) *TrendingWorker {
	return &TrendingWorker{
		cache:      cache,
		consumer:   consumer,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

func (w *TrendingWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting trending worker...")

	return w.consumer.Subscribe(ctx, func(msg queue.Message) error {
		var event queue.Event
		data, err := json.Marshal(msg.Value)
		if err != nil {
			return fmt.Errorf("failed to marshal message value: %w", err)
		}
		if err := json.Unmarshal(data, &event); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}

		w.logger.WithFields(map[string]interface{}{
			"event_type": event.Type,
			"timestamp":  event.Timestamp,
		}).Info("Processing event")

		switch event.Type {
		case queue.EventDreamCreated:
			return w.adjustScore(ctx, event, dreamCreatedScore)
		case queue.EventLikeCreated:
			return w.adjustScore(ctx, event, likeScore)
		case queue.EventLikeDeleted:
			return w.adjustScore(ctx, event, -likeScore)
		case queue.EventCommentCreated:
			return w.adjustScore(ctx, event, commentScore)
		case queue.EventDreamDeleted:
			return w.handleDreamDeleted(ctx, event)
		default:
			return nil
		}
	})
}

func (w *TrendingWorker) Stop() error {
	return w.consumer.Close()
}

func (w *TrendingWorker) adjustScore(ctx context.Context, event queue.Event, delta float64) error {
	dreamID, err := dreamIDFromEvent(event)
	if err != nil {
		return err
	}

	if err := w.cache.ZIncrBy(ctx, services.TrendingKey, delta, dreamID); err != nil {
		return fmt.Errorf("failed to adjust trending score: %w", err)
	}

	w.logger.WithFields(map[string]interface{}{
		"dream_id": dreamID,
		"delta":    delta,
	}).Info("Trending score adjusted")

	return w.trim(ctx)
}

func (w *TrendingWorker) handleDreamDeleted(ctx context.Context, event queue.Event) error {
	dreamID, err := dreamIDFromEvent(event)
	if err != nil {
		return err
	}

	if err := w.cache.ZRem(ctx, services.TrendingKey, dreamID); err != nil {
		return fmt.Errorf("failed to remove dream from trending: %w", err)
	}

	w.logger.WithField("dream_id", dreamID).Info("Dream removed from trending")
	return nil
}

// trim keeps the sorted set bounded by dropping the lowest-scored
// entries past maxEntries.
func (w *TrendingWorker) trim(ctx context.Context) error {
	count, err := w.cache.ZCard(ctx, services.TrendingKey)
	if err != nil {
		return fmt.Errorf("failed to check trending size: %w", err)
	}
	if count <= int64(w.maxEntries) {
		return nil
	}

	if err := w.cache.ZRemRangeByRank(ctx, services.TrendingKey, 0, count-int64(w.maxEntries)-1); err != nil {
		return fmt.Errorf("failed to trim trending set: %w", err)
	}
	return nil
}

func dreamIDFromEvent(event queue.Event) (string, error) {
	data, ok := event.Data.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid event data")
	}
	dreamID, ok := data["dream_id"].(string)
	if !ok {
		return "", fmt.Errorf("missing dream_id in event data")
	}
	return dreamID, nil
}
