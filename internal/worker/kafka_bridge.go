package worker

import (
	"context"

	"github.com/example/d7-messaging/internal/kafka/consumer"
)

// NewRecordFromConsumer converts a consumer record into a worker record whose
// Commit calls commit.
func NewRecordFromConsumer(rec *consumer.Record, commit func(context.Context) error) *Record {
	if rec == nil {
		return nil
	}
	wr := &Record{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     rec.Value,
		Timestamp: rec.Timestamp,
		Headers:   rec.Headers,
	}
	if commit != nil {
		wr.setCommitFn(commit)
	}
	return wr
}
