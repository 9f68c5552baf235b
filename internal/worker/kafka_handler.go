package worker

import (
	"context"

	"github.com/example/d7-messaging/internal/kafka/consumer"
)

// RecordCommitter commits consumer records.
type RecordCommitter interface {
	Commit(ctx context.Context, record *consumer.Record) error
}

// KafkaHandler feeds consumer records into engine. Offsets are committed
// through cons once the engine has published the record's result.
func KafkaHandler(engine *Engine, cons RecordCommitter) consumer.Handler {
	return func(ctx context.Context, rec *consumer.Record) error {
		if engine == nil || rec == nil {
			return nil
		}
		var commit func(context.Context) error
		if cons != nil {
			commit = func(c context.Context) error { return cons.Commit(c, rec) }
		}
		engine.HandleRecord(ctx, NewRecordFromConsumer(rec, commit))
		return nil
	}
}
