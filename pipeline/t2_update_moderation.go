package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/attempt"
	"examengine/errs"
	"examengine/models"
	"examengine/moderation"
	"examengine/scorer"
)

// UpdateModerationCollection is T2: create a Moderation row for every
// Attempt lacking one whose exam window has expired, deciding its
// initial disposition from the Scorer and the Moderation Scorer.
//
// Grounded on original_source/moderation-service/src/db.rs's
// update_moderation_collection.
func (r *Runner) UpdateModerationCollection(ctx context.Context) error {
	filter := bson.M{"$or": bson.A{
		bson.M{"examModerationId": bson.M{"$exists": false}},
		bson.M{"examModerationId": nil},
	}}

	cur, err := r.Store.Attempts().Find(ctx, filter)
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T2: find unmoderated attempts")
	}
	defer cur.Close(ctx)

	examCache := make(map[primitive.ObjectID]models.Exam)
	genCache := make(map[primitive.ObjectID]models.GeneratedExam)
	now := time.Now()

	for cur.Next(ctx) {
		var a models.Attempt
		if err := cur.Decode(&a); err != nil {
			r.Log.Warn("T2: unable to deserialize attempt", "error", err)
			continue
		}
		if err := r.updateModerationForAttempt(ctx, a, examCache, genCache, now); err != nil {
			r.Log.Warn("T2: skipping attempt", "attempt", a.ID.Hex(), "error", err)
		}
	}
	return cur.Err()
}

func (r *Runner) updateModerationForAttempt(
	ctx context.Context,
	a models.Attempt,
	examCache map[primitive.ObjectID]models.Exam,
	genCache map[primitive.ObjectID]models.GeneratedExam,
	now time.Time,
) error {
	if a.ExamID == models.PracticeExamID {
		r.Log.Debug("T2: skipping practice exam", "attempt", a.ID.Hex())
		return nil
	}

	exam, ok := examCache[a.ExamID]
	if !ok {
		var err error
		exam, err = r.Store.FindExam(ctx, a.ExamID)
		if err != nil {
			return fmt.Errorf("find exam for attempt: %w", err)
		}
		examCache[a.ExamID] = exam
	}

	totalTimeMS := int64(exam.Config.TotalTimeInS) * 1000
	expiryMS := a.StartTime.UnixMilli() + totalTimeMS
	if expiryMS >= now.UnixMilli() {
		return nil
	}

	submissionDate := time.UnixMilli(expiryMS)
	m := models.Moderation{
		ID:            primitive.NewObjectID(),
		ExamAttemptID: a.ID,
		Status:        models.ModerationPending,
		SubmissionDate: submissionDate,
		Version:        2,
	}

	gen, ok := genCache[a.GeneratedExamID]
	if !ok {
		var err error
		gen, err = r.Store.FindGeneratedExam(ctx, a.GeneratedExamID)
		if err != nil {
			return fmt.Errorf("find generated exam for attempt: %w", err)
		}
		genCache[a.GeneratedExamID] = gen
	}

	view := attempt.Construct(exam, gen, a)
	pass := scorer.CheckAttemptPass(view, exam.Config.PassingPercent)

	if !pass {
		feedback := "Auto Approved - Failed attempt"
		m.Status = models.ModerationApproved
		m.ModerationDate = &now
		m.Feedback = &feedback
		m.ChallengesAwarded = true
	} else {
		evs, err := r.Events.ForAttempt(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		score, err := moderation.Score(view, evs, exam.Config.TotalTimeInS, r.Log)
		if err != nil {
			return fmt.Errorf("moderation score: %w", err)
		}
		r.Log.Debug("T2: moderation score", "attempt", a.ID.Hex(), "score", score)

		if score < r.Config.ModerationThreshold {
			feedback := fmt.Sprintf("Auto Approved - Moderation score: %v", score)
			m.Status = models.ModerationApproved
			m.ModerationDate = &now
			m.Feedback = &feedback
		} else {
			feedback := fmt.Sprintf("Moderation score: %v", score)
			m.Feedback = &feedback
		}
	}

	res, err := r.Store.Moderations().InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert moderation record: %w", err)
	}

	_, err = r.Store.Attempts().UpdateOne(ctx,
		bson.M{"_id": a.ID},
		bson.M{"$set": bson.M{"examModerationId": res.InsertedID}},
	)
	if err != nil {
		return fmt.Errorf("update attempt with moderation id: %w", err)
	}
	return nil
}
