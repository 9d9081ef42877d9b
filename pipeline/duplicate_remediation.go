package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/errs"
	"examengine/models"
)

// DuplicateModerationRemediation is §4.8: repair attempts that
// accumulated more than one Moderation record, replacing each group
// with a single Denied record and deleting the originals.
//
// Grounded on original_source/moderation-service/src/db.rs's
// temp_handle_duplicate_moderations. Run as a scheduled task ahead of
// T1 each cycle (decision recorded in SPEC_FULL.md §9); the binary has
// no separate subcommand for it.
func (r *Runner) DuplicateModerationRemediation(ctx context.Context) error {
	groups, err := r.duplicateModerationGroups(ctx)
	if err != nil {
		return err
	}

	for _, attemptID := range groups {
		if err := r.remediateDuplicateGroup(ctx, attemptID); err != nil {
			r.Log.Warn("duplicate remediation: skipping group", "attempt", attemptID.Hex(), "error", err)
		}
	}
	return nil
}

func (r *Runner) duplicateModerationGroups(ctx context.Context) ([]primitive.ObjectID, error) {
	type agg struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int                `bson:"count"`
	}

	cur, err := r.Store.Moderations().Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": "$examAttemptId", "count": bson.M{"$sum": 1}}},
		bson.M{"$match": bson.M{"count": bson.M{"$gt": 1}}},
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "duplicate remediation: aggregate")
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var a agg
		if err := cur.Decode(&a); err != nil {
			r.Log.Warn("duplicate remediation: unable to deserialize aggregation row", "error", err)
			continue
		}
		out = append(out, a.ID)
	}
	return out, cur.Err()
}

func (r *Runner) remediateDuplicateGroup(ctx context.Context, attemptID primitive.ObjectID) error {
	cur, err := r.Store.Moderations().Find(ctx, bson.M{"examAttemptId": attemptID})
	if err != nil {
		return fmt.Errorf("find duplicate group: %w", err)
	}
	var dups []models.Moderation
	if err := cur.All(ctx, &dups); err != nil {
		return fmt.Errorf("decode duplicate group: %w", err)
	}
	if len(dups) < 2 {
		return nil
	}

	now := time.Now()
	feedback := "Auto Moderated - Invalid attempt submission"
	replacement := models.Moderation{
		ID:                primitive.NewObjectID(),
		ExamAttemptID:     attemptID,
		Status:            models.ModerationDenied,
		Feedback:          &feedback,
		ModerationDate:    &now,
		SubmissionDate:    dups[0].SubmissionDate,
		ChallengesAwarded: true,
		Version:           2,
	}

	ids := make([]primitive.ObjectID, 0, len(dups))
	for _, d := range dups {
		if d.SubmissionDate.Before(replacement.SubmissionDate) {
			replacement.SubmissionDate = d.SubmissionDate
		}
		ids = append(ids, d.ID)
	}

	if _, err := r.Store.Moderations().InsertOne(ctx, replacement); err != nil {
		return fmt.Errorf("insert replacement moderation: %w", err)
	}

	res, err := r.Store.Moderations().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("delete duplicate group: %w", err)
	}
	if int(res.DeletedCount) != len(ids) {
		return fmt.Errorf("deleted %d records, expected %d", res.DeletedCount, len(ids))
	}
	r.Log.Info("duplicate remediation: merged group", "attempt", attemptID.Hex(), "deleted", res.DeletedCount)
	return nil
}
