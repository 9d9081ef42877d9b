package pipeline

import (
	"context"
	"time"

	"examengine/errs"
)

// DeleteSupabaseEvents is T5: purge external-event-store rows older
// than 30 days.
//
// Grounded on original_source/moderation-service/src/db.rs's
// delete_supabase_events.
func (r *Runner) DeleteSupabaseEvents(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -30)
	n, err := r.Events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T5: delete old events")
	}
	r.Log.Info("T5: deleted supabase events", "count", n, "cutoff", cutoff)
	return nil
}
