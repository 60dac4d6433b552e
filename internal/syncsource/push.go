package syncsource

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"

	"habitflow/internal/models"
	"habitflow/pkg/logger"
)

// Handler consumes one decoded change event.
type Handler func(ctx context.Context, ev models.ChangeEvent)

// PushSource subscribes to the change-event topic. Events arrive in commit
// order per owner (partitioning by owner id), so applying them in arrival
// order is safe.
type PushSource struct {
	brokers []string
	topic   string
	groupID string
	handle  Handler
}

// NewPush builds a push source. groupID should be unique per process so
// every replica observes the full stream.
func NewPush(brokers []string, topic, groupID string, handle Handler) *PushSource {
	return &PushSource{brokers: brokers, topic: topic, groupID: groupID, handle: handle}
}

// Probe checks that a broker is reachable before committing to push mode.
func (p *PushSource) Probe(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return err
	}
	return conn.Close()
}

// Run consumes the topic until ctx is done. Malformed messages are committed
// and skipped so a poison pill cannot block the partition.
func (p *PushSource) Run(ctx context.Context) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  p.brokers,
		Topic:    p.topic,
		GroupID:  p.groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Push source started", "topic", p.topic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Push source fetch failed", "error", err)
			continue
		}
		var ev models.ChangeEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			logger.Error(ctx, "Push source decode failed", "error", err, "payload", string(msg.Value))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		p.handle(ctx, ev)
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Push source commit failed", "error", err)
		}
	}
}
