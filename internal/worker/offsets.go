package worker

import "sync"

type partitionKey struct {
	topic     string
	partition int32
}

type pendingRecord struct {
	record *Record
	done   bool
}

// offsetTracker orders completions per partition so only the highest record
// whose lower offsets have all completed is committed. A record that never
// completes holds back every later commit on its partition.
type offsetTracker struct {
	mu    sync.Mutex
	parts map[partitionKey][]*pendingRecord
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{parts: make(map[partitionKey][]*pendingRecord)}
}

// track registers record in delivery order. An offset at or below the last
// tracked one means the partition is being redelivered, so the stale queue
// is dropped.
func (t *offsetTracker) track(record *Record) *pendingRecord {
	key := partitionKey{topic: record.Topic, partition: record.Partition}
	p := &pendingRecord{record: record}

	t.mu.Lock()
	defer t.mu.Unlock()
	queue := t.parts[key]
	if n := len(queue); n > 0 && record.Offset <= queue[n-1].record.Offset {
		queue = nil
	}
	t.parts[key] = append(queue, p)
	return p
}

// complete marks p done and returns the record to commit, or nil when an
// earlier record on the partition is still outstanding.
func (t *offsetTracker) complete(p *pendingRecord) *Record {
	key := partitionKey{topic: p.record.Topic, partition: p.record.Partition}

	t.mu.Lock()
	defer t.mu.Unlock()
	p.done = true
	queue := t.parts[key]
	i := 0
	for i < len(queue) && queue[i].done {
		i++
	}
	if i == 0 {
		return nil
	}
	last := queue[i-1].record
	if i == len(queue) {
		delete(t.parts, key)
	} else {
		t.parts[key] = queue[i:]
	}
	return last
}
