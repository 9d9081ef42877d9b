// Package attempt implements the Attempt Assembler (§4.4): it projects
// an exam template, a Generation and a raw Attempt into a single
// denormalised Attempt View consumed by scoring and moderation scoring.
//
// Grounded on original_source/exam-utils/src/attempt.rs's construct_attempt.
package attempt

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/models"
)

// View is the denormalised join of an Attempt with its exam template and
// Generation. It carries no behavior of its own beyond what scoring and
// moderation scoring read from it.
type View struct {
	ExamID          primitive.ObjectID
	GeneratedExamID primitive.ObjectID
	UserID          primitive.ObjectID
	StartTime       time.Time
	QuestionSets    []ViewQuestionSet
}

// ViewQuestionSet mirrors one template QuestionSet, enumerating every
// template question with its three projections filled in (or left
// empty/zero when the corresponding attempt or generation row is absent).
type ViewQuestionSet struct {
	ID        primitive.ObjectID
	Questions []ViewQuestion
}

// ViewQuestion carries everything the Scorer and Moderation Scorer need
// for one question: every template answer, the generation's offered
// subset, the candidate's selection, and the submission instant.
type ViewQuestion struct {
	ID             primitive.ObjectID
	Answers        []models.Answer
	Generated      []primitive.ObjectID
	Selected       []primitive.ObjectID
	SubmissionTime *time.Time
}

// Construct builds a View from (exam, generation, raw attempt). Absent
// attempt rows (the user skipped a set or question) are tolerated and
// yield empty projections; it does no scoring itself.
func Construct(exam models.Exam, gen models.GeneratedExam, raw models.Attempt) View {
	view := View{
		ExamID:          exam.ID,
		GeneratedExamID: gen.ID,
		UserID:          raw.UserID,
		StartTime:       raw.StartTime,
	}

	for _, qs := range exam.QuestionSets {
		attemptQS := findAttemptQS(raw, qs.ID)
		genQS := findGeneratedQS(gen, qs.ID)

		vqs := ViewQuestionSet{ID: qs.ID}
		for _, q := range qs.Questions {
			vq := ViewQuestion{ID: q.ID, Answers: q.Answers}

			if genQS != nil {
				if gq := findGeneratedQuestion(*genQS, q.ID); gq != nil {
					vq.Generated = gq.Answers
				}
			}
			if attemptQS != nil {
				if aq := findAttemptQuestion(*attemptQS, q.ID); aq != nil {
					vq.Selected = aq.Answers
					vq.SubmissionTime = aq.SubmissionTime
				}
			}
			vqs.Questions = append(vqs.Questions, vq)
		}
		view.QuestionSets = append(view.QuestionSets, vqs)
	}

	return view
}

func findAttemptQS(a models.Attempt, id primitive.ObjectID) *models.AttemptQuestionSet {
	for i := range a.QuestionSets {
		if a.QuestionSets[i].ID == id {
			return &a.QuestionSets[i]
		}
	}
	return nil
}

func findGeneratedQS(g models.GeneratedExam, id primitive.ObjectID) *models.GeneratedQuestionSet {
	for i := range g.QuestionSets {
		if g.QuestionSets[i].ID == id {
			return &g.QuestionSets[i]
		}
	}
	return nil
}

func findAttemptQuestion(qs models.AttemptQuestionSet, id primitive.ObjectID) *models.AttemptQuestion {
	for i := range qs.Questions {
		if qs.Questions[i].ID == id {
			return &qs.Questions[i]
		}
	}
	return nil
}

func findGeneratedQuestion(qs models.GeneratedQuestionSet, id primitive.ObjectID) *models.GeneratedQuestion {
	for i := range qs.Questions {
		if qs.Questions[i].ID == id {
			return &qs.Questions[i]
		}
	}
	return nil
}
