package persist

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type batchWriter interface {
	InsertBatch(ctx context.Context, entries []JournalEntry) error
}

// AsyncJournal queues journal entries from the tick goroutine and writes
// them on a background goroutine. Record never blocks; when the queue is
// full the entry is dropped with a warning.
type AsyncJournal struct {
	repo    batchWriter
	queue   chan JournalEntry
	done    chan struct{}
	log     *zap.Logger
	dropped atomic.Uint64
	now     func() time.Time
}

func NewAsyncJournal(repo batchWriter, queueSize int, log *zap.Logger) *AsyncJournal {
	return &AsyncJournal{
		repo:  repo,
		queue: make(chan JournalEntry, queueSize),
		done:  make(chan struct{}),
		log:   log,
		now:   time.Now,
	}
}

// Record implements haunt.Journal.
func (j *AsyncJournal) Record(kind, mapName, detail string) {
	e := JournalEntry{Kind: kind, MapName: mapName, Detail: detail, At: j.now()}
	select {
	case j.queue <- e:
	default:
		n := j.dropped.Add(1)
		j.log.Warn("journal queue full, entry dropped",
			zap.String("kind", kind), zap.Uint64("dropped", n))
	}
}

// Dropped returns how many entries were discarded because the queue was full.
func (j *AsyncJournal) Dropped() uint64 { return j.dropped.Load() }

// Run writes queued entries until ctx is cancelled, then flushes what is
// left using a short grace period.
func (j *AsyncJournal) Run(ctx context.Context) {
	defer close(j.done)
	for {
		select {
		case e := <-j.queue:
			j.write(ctx, j.drain(e))
		case <-ctx.Done():
			j.flush()
			return
		}
	}
}

// Wait blocks until Run has returned.
func (j *AsyncJournal) Wait() { <-j.done }

func (j *AsyncJournal) drain(first JournalEntry) []JournalEntry {
	batch := []JournalEntry{first}
	for {
		select {
		case e := <-j.queue:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (j *AsyncJournal) flush() {
	select {
	case e := <-j.queue:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		j.write(ctx, j.drain(e))
	default:
	}
}

func (j *AsyncJournal) write(ctx context.Context, batch []JournalEntry) {
	if err := j.repo.InsertBatch(ctx, batch); err != nil {
		j.log.Error("journal write failed", zap.Int("entries", len(batch)), zap.Error(err))
		return
	}
	j.log.Debug("journal written", zap.Int("entries", len(batch)))
}
