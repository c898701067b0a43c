package realtime

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type subscriber struct {
	table  string
	filter Filter
	ch     chan models.ChangeEvent
}

// MemoryBroker delivers events to subscribers of the same process.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[*subscriber]struct{})}
}

func (b *MemoryBroker) Publish(ctx context.Context, ev models.ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs {
		if s.table != ev.Table {
			continue
		}
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			// slow subscriber
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, table string, filter Filter) (<-chan models.ChangeEvent, func()) {
	s := &subscriber{
		table:  table,
		filter: filter,
		ch:     make(chan models.ChangeEvent, subscriberBuffer),
	}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, s)
			b.mu.Unlock()
			close(s.ch)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return s.ch, cancel
}
