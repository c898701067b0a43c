package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/logging"
)

// Tables that can be watched.
const (
	TableProjects = "projects"
	TableTasks    = "tasks"
	TableProfiles = "profiles"
)

// Watcher turns backend change streams into callbacks. List screens reload
// on any change, so fn receives every event of the table.
type Watcher struct {
	client client.Client
	logger logging.Logger
}

func NewWatcher(c client.Client, logger logging.Logger) *Watcher {
	return &Watcher{client: c, logger: logger}
}

// Watch subscribes to changes of table, or of a single record when
// recordID is set, and calls fn for each one from a dedicated goroutine.
// The returned stop function cancels the subscription and waits for the
// goroutine to exit.
func (w *Watcher) Watch(ctx context.Context, table, recordID string, fn func(models.ChangeEvent)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	ch, err := w.client.Subscribe(ctx, table, recordID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range ch {
			fn(ev)
		}
		if ctx.Err() == nil {
			w.logger.Warn(ctx, "change stream closed", "table", table)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}
