package memstore

import (
	"context"
	"sync"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

const DefaultChangeLogCapacity = domain.DefaultChangeLogCapacity

// ChangeLog is a bounded most-recent-first log. Appending past capacity evicts the oldest entry.
type ChangeLog struct {
	mu       sync.Mutex
	capacity int
	entries  []domain.SchemaChangeLog
}

func NewChangeLog(capacity int) *ChangeLog {
	if capacity <= 0 {
		capacity = DefaultChangeLogCapacity
	}
	return &ChangeLog{capacity: capacity, entries: make([]domain.SchemaChangeLog, 0, capacity)}
}

func (l *ChangeLog) Capacity() int { return l.capacity }

func (l *ChangeLog) Append(ctx context.Context, entry domain.SchemaChangeLog) error {
	if err := ctx.Err(); err != nil {
		return domain.UnavailableError("MemChangeLog.Append", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	next := make([]domain.SchemaChangeLog, 0, l.capacity)
	next = append(next, entry)
	next = append(next, l.entries...)
	if len(next) > l.capacity {
		next = next[:l.capacity]
	}
	l.entries = next
	return nil
}

func (l *ChangeLog) ReadRecent(ctx context.Context, limit int) ([]domain.SchemaChangeLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.UnavailableError("MemChangeLog.ReadRecent", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.SchemaChangeLog, n)
	copy(out, l.entries[:n])
	return out, nil
}
