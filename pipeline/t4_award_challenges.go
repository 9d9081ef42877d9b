package pipeline

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"examengine/attempt"
	"examengine/errs"
	"examengine/models"
	"examengine/scorer"
)

// AwardChallengeIds is T4: push the certification challenge onto every
// passing, Approved, not-yet-awarded attempt's user record, then flip
// challengesAwarded=true on every Approved Moderation unconditionally
// (even ones skipped above), so records are never reconsidered — lost
// awards are recovered out-of-band by Challenge-Award Recovery (§4.9).
//
// Grounded on original_source/moderation-service/src/db.rs's
// award_challenge_ids.
func (r *Runner) AwardChallengeIds(ctx context.Context) error {
	attemptIDs, err := r.approvedUnawardedAttemptIDs(ctx)
	if err != nil {
		return err
	}
	if len(attemptIDs) > 0 {
		if err := r.pushChallengesForAttempts(ctx, attemptIDs); err != nil {
			return err
		}
	}

	res, err := r.Store.Moderations().UpdateMany(ctx,
		bson.M{"challengesAwarded": false, "status": models.ModerationApproved},
		bson.M{"$set": bson.M{"challengesAwarded": true}},
	)
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T4: flip challengesAwarded")
	}
	r.Log.Info("T4: updated moderation records", "count", res.ModifiedCount)
	return nil
}

// approvedUnawardedAttemptIDs returns the examAttemptId of every
// Moderation eligible for T4 consideration.
func (r *Runner) approvedUnawardedAttemptIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	type projection struct {
		ExamAttemptID primitive.ObjectID `bson:"examAttemptId"`
	}

	cur, err := r.Store.Moderations().Find(ctx, bson.M{
		"challengesAwarded": false,
		"status":            models.ModerationApproved,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "T4: find approved unawarded moderations")
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var p projection
		if err := cur.Decode(&p); err != nil {
			r.Log.Warn("T4: unable to deserialize moderation projection", "error", err)
			continue
		}
		ids = append(ids, p.ExamAttemptID)
	}
	return ids, cur.Err()
}

// pushChallengesForAttempts re-joins attempts/exams/generations/
// challenges, re-checks pass/fail, and bulk-pushes completedChallenges
// entries onto each passing user, guarded by a $ne on the challenge id
// so re-running never double-awards.
func (r *Runner) pushChallengesForAttempts(ctx context.Context, attemptIDs []primitive.ObjectID) error {
	cur, err := r.Store.Attempts().Find(ctx, bson.M{"_id": bson.M{"$in": attemptIDs}})
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T4: find attempts")
	}
	var attempts []models.Attempt
	if err := cur.All(ctx, &attempts); err != nil {
		return errs.Wrap(errs.KindDeserialization, err, "T4: decode attempts")
	}

	examIDs := uniqueObjectIDs(attempts, func(a models.Attempt) primitive.ObjectID { return a.ExamID })
	genIDs := uniqueObjectIDs(attempts, func(a models.Attempt) primitive.ObjectID { return a.GeneratedExamID })

	exams, err := r.findExams(ctx, examIDs)
	if err != nil {
		return err
	}
	gens, err := r.findGeneratedExams(ctx, genIDs)
	if err != nil {
		return err
	}
	challenges, err := r.findChallenges(ctx, examIDs)
	if err != nil {
		return err
	}

	models_ := make([]mongo.WriteModel, 0, len(attempts))
	for _, a := range attempts {
		exam, ok := exams[a.ExamID]
		if !ok {
			r.Log.Warn("T4: exam missing for attempt", "attempt", a.ID.Hex(), "exam", a.ExamID.Hex())
			continue
		}
		gen, ok := gens[a.GeneratedExamID]
		if !ok {
			r.Log.Warn("T4: generation missing for attempt", "attempt", a.ID.Hex())
			continue
		}

		view := attempt.Construct(exam, gen, a)
		if !scorer.CheckAttemptPass(view, exam.Config.PassingPercent) {
			continue
		}

		challenge, ok := challenges[a.ExamID]
		if !ok {
			r.Log.Warn("T4: no challenge mapped for exam", "user", a.UserID.Hex(), "exam", a.ExamID.Hex())
			continue
		}

		completed := models.CompletedChallenge{
			ID:            challenge.ChallengeID,
			CompletedDate: a.StartTime.UnixMilli(),
			ChallengeType: models.ChallengeTypeCertification,
		}
		update := mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a.UserID, "completedChallenges.id": bson.M{"$ne": challenge.ChallengeID}}).
			SetUpdate(bson.M{"$push": bson.M{"completedChallenges": completed}})
		models_ = append(models_, update)
	}

	if len(models_) == 0 {
		return nil
	}

	res, err := r.Store.Users().BulkWrite(ctx, models_)
	if err != nil {
		return errs.Wrap(errs.KindStorageIO, err, "T4: bulk write user challenge awards")
	}
	r.Log.Info("T4: updated users with new challenge ids", "count", res.ModifiedCount)
	return nil
}

func (r *Runner) findExams(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Exam, error) {
	cur, err := r.Store.Exams().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "find exams")
	}
	var exams []models.Exam
	if err := cur.All(ctx, &exams); err != nil {
		return nil, errs.Wrap(errs.KindDeserialization, err, "decode exams")
	}
	out := make(map[primitive.ObjectID]models.Exam, len(exams))
	for _, e := range exams {
		out[e.ID] = e
	}
	return out, nil
}

func (r *Runner) findGeneratedExams(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.GeneratedExam, error) {
	cur, err := r.Store.Generations().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "find generated exams")
	}
	var gens []models.GeneratedExam
	if err := cur.All(ctx, &gens); err != nil {
		return nil, errs.Wrap(errs.KindDeserialization, err, "decode generated exams")
	}
	out := make(map[primitive.ObjectID]models.GeneratedExam, len(gens))
	for _, g := range gens {
		out[g.ID] = g
	}
	return out, nil
}

func (r *Runner) findChallenges(ctx context.Context, examIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Challenge, error) {
	cur, err := r.Store.Challenges().Find(ctx, bson.M{"examId": bson.M{"$in": examIDs}})
	if err != nil {
		return nil, errs.Wrap(errs.KindStorageIO, err, "find challenges")
	}
	var challenges []models.Challenge
	if err := cur.All(ctx, &challenges); err != nil {
		return nil, errs.Wrap(errs.KindDeserialization, err, "decode challenges")
	}
	out := make(map[primitive.ObjectID]models.Challenge, len(challenges))
	for _, c := range challenges {
		out[c.ExamID] = c
	}
	return out, nil
}

func uniqueObjectIDs(attempts []models.Attempt, get func(models.Attempt) primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var out []primitive.ObjectID
	for _, a := range attempts {
		id := get(a)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
