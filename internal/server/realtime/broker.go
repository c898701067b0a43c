// Package realtime fans row change events out to subscribers.
package realtime

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/server/models"
)

// subscriberBuffer is how many undelivered events a subscriber may hold
// before further events are dropped for it.
const subscriberBuffer = 64

// Filter selects the events a subscriber receives. A nil Filter accepts all.
type Filter func(models.ChangeEvent) bool

type Broker interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
	// Subscribe returns events for table in publish order. The channel is
	// closed once cancel is called or ctx is done.
	Subscribe(ctx context.Context, table string, filter Filter) (<-chan models.ChangeEvent, func())
}
