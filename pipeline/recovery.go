package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/errs"
	"examengine/models"
)

// RecoverChallenges is §4.9: re-scan every Approved, already-awarded
// Moderation and push any challenge still missing from its user, to
// recover from a partial T4 failure. Never awards twice thanks to the
// $ne guard shared with T4's bulk write.
//
// Grounded on original_source/script/src/ensure_awarded_challenges.rs.
func (r *Runner) RecoverChallenges(ctx context.Context) error {
	attemptIDs, err := r.attemptIDsMatching(ctx, bson.M{
		"challengesAwarded": true,
		"status":            models.ModerationApproved,
	})
	if err != nil {
		return err
	}
	if len(attemptIDs) == 0 {
		r.Log.Info("recover-challenges: nothing to recover")
		return nil
	}
	return r.pushChallengesForAttempts(ctx, attemptIDs)
}

// RecoverChallengesSince is §4.10: the same recovery restricted to a
// moderationDate window [from, to), for repairing a known-bad range
// without re-scanning the whole collection.
//
// Grounded on original_source/script/src/award_challenges_from_date.rs.
func (r *Runner) RecoverChallengesSince(ctx context.Context, from, to time.Time) error {
	attemptIDs, err := r.attemptIDsMatching(ctx, bson.M{
		"challengesAwarded": true,
		"status":            models.ModerationApproved,
		"moderationDate":    bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return err
	}
	if len(attemptIDs) == 0 {
		r.Log.Info("recover-challenges-since: nothing to recover", "from", from, "to", to)
		return nil
	}
	return r.pushChallengesForAttempts(ctx, attemptIDs)
}

func (r *Runner) attemptIDsMatching(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	type projection struct {
		ExamAttemptID primitive.ObjectID `bson:"examAttemptId"`
	}

	cur, err := r.Store.Moderations().Find(ctx, filter)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "recovery: find matching moderations")
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var p projection
		if err := cur.Decode(&p); err != nil {
			r.Log.Warn("recovery: unable to deserialize moderation projection", "error", err)
			continue
		}
		ids = append(ids, p.ExamAttemptID)
	}
	return ids, cur.Err()
}
