package pipeline

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"examengine/errs"
	"examengine/models"
)

// DeletePracticeAttempts is T1: delete every practice-exam Attempt whose
// startTime is older than 1000s, leaving in-progress practice sessions
// alone.
//
// Grounded on original_source/moderation-service/src/db.rs's
// delete_practice_exam_attempts.
func (r *Runner) DeletePracticeAttempts(ctx context.Context) error {
	cutoff := time.Now().Add(-1000 * time.Second)

	res, err := r.Store.Attempts().DeleteMany(ctx, bson.M{
		"examId":    models.PracticeExamID,
		"startTime": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T1: delete practice attempts")
	}
	r.Log.Info("deleted practice exam attempts", "count", res.DeletedCount)
	return nil
}
