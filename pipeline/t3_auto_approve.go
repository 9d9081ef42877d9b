package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/errs"
	"examengine/models"
)

// AutoApproveModerationRecords is T3: age out Pending Moderations whose
// grace window (ModerationLengthInS, default 7 days from submission)
// has elapsed, approving them without re-scoring the attempt.
//
// Grounded on original_source/moderation-service/src/db.rs's
// auto_approve_moderation_records.
func (r *Runner) AutoApproveModerationRecords(ctx context.Context) error {
	type projection struct {
		ID             primitive.ObjectID `bson:"_id"`
		SubmissionDate time.Time          `bson:"submissionDate"`
	}

	cur, err := r.Store.Moderations().Find(ctx,
		bson.M{"status": models.ModerationPending},
	)
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T3: find pending moderations")
	}
	defer cur.Close(ctx)

	now := time.Now()
	grace := r.Config.ModerationLength()

	for cur.Next(ctx) {
		var p projection
		if err := cur.Decode(&p); err != nil {
			r.Log.Warn("T3: unable to deserialize moderation record", "error", err)
			continue
		}
		expiry := p.SubmissionDate.Add(grace)
		if !now.After(expiry) {
			continue
		}

		feedback := "Auto Approved - Moderation time exceeded"
		_, err := r.Store.Moderations().UpdateOne(ctx,
			bson.M{"_id": p.ID},
			bson.M{"$set": bson.M{
				"feedback":       feedback,
				"moderationDate": now,
				"status":         models.ModerationApproved,
			}},
		)
		if err != nil {
			r.Log.Warn("T3: unable to auto-approve moderation record", "moderation", p.ID.Hex(), "error", err)
			continue
		}
		r.Log.Info("T3: moderation auto-approved", "moderation", p.ID.Hex())
	}
	return cur.Err()
}
