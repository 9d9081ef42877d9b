// Package scorer implements the Scorer (§4.5): deterministic comparison
// of a candidate's submitted answers against the generation's correct
// set, and the pass/fail decision used throughout the Moderation
// Pipeline.
//
// Grounded on original_source/exam-utils/src/misc.rs and
// exam-utils/src/attempt.rs, which carry near-identical copies of this
// logic in the original; reconciled here into a single implementation.
package scorer

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/attempt"
	"examengine/errs"
	"examengine/models"
	"examengine/utils"
)

// CompareAnswers reports whether the candidate's selected answers
// exactly match the set of correct answers among the ones offered by
// the generation. Let C be the subset of generated whose corresponding
// exam answer IsCorrect; the question is correct iff |selected| = |C|
// and every element of C is in selected.
func CompareAnswers(examAnswers []models.Answer, generated, selected []primitive.ObjectID) bool {
	correctIDs := make(map[primitive.ObjectID]bool, len(examAnswers))
	for _, a := range examAnswers {
		if a.IsCorrect {
			correctIDs[a.ID] = true
		}
	}

	var correct []primitive.ObjectID
	for _, id := range generated {
		if correctIDs[id] {
			correct = append(correct, id)
		}
	}

	if len(selected) != len(correct) {
		return false
	}
	for _, id := range correct {
		if !utils.ContainsID(selected, id) {
			return false
		}
	}
	return true
}

// CalculateScore returns the percentage (0-100) of questions the
// candidate answered correctly across the whole attempt view. Fails if
// the view carries no generated questions at all, which indicates an
// upstream invariant violation (I1).
func CalculateScore(view attempt.View) (float64, error) {
	total := 0
	correct := 0
	for _, qs := range view.QuestionSets {
		for _, q := range qs.Questions {
			if len(q.Generated) == 0 {
				// Not part of this candidate's generation; excluded from total.
				continue
			}
			total++
			if CompareAnswers(q.Answers, q.Generated, q.Selected) {
				correct++
			}
		}
	}
	if total == 0 {
		return 0, errs.New(errs.KindGeneration, "attempt view has no generated questions to score")
	}
	return 100.0 * float64(correct) / float64(total), nil
}

// CheckAttemptPass reports whether the attempt's score meets
// passingPercent. On a scorer error it returns false rather than
// propagating, per §4.5.
func CheckAttemptPass(view attempt.View, passingPercent float64) bool {
	score, err := CalculateScore(view)
	if err != nil {
		return false
	}
	return score >= passingPercent
}
