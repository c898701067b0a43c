package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
)

// publisher announces committed writes. A failed publish is logged only:
// the row is already stored and clients reload on their next change.
type publisher struct {
	broker realtime.Broker
	logger logging.Logger
}

func (p publisher) publish(ctx context.Context, table, typ, recordID string, users []string, organization string) {
	if p.broker == nil {
		return
	}
	ev := models.ChangeEvent{
		Table:        table,
		Type:         typ,
		RecordID:     recordID,
		At:           time.Now().UTC(),
		Users:        audience(users...),
		Organization: organization,
	}
	if err := p.broker.Publish(ctx, ev); err != nil {
		p.logger.Warn(ctx, "publish change event failed", "table", table, "record_id", recordID, "error", err)
	}
}

// audience drops empty and repeated user IDs.
func audience(ids ...string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
