package generator

import (
	"math/rand"

	"examengine/errs"
	"examengine/models"
)

// selectRandomAnswers implements §4.2.1: shuffle the question's answers
// under the seed, take the first numberOfIncorrectAnswers incorrect and
// the first numberOfCorrectAnswers correct, concatenated incorrect-then-
// correct. q must already have its answers pre-shuffled by buildPool;
// this function only partitions and truncates.
func selectRandomAnswers(q models.Question, cfg models.QuestionSetConfig, rng *rand.Rand) (models.GeneratedQuestion, error) {
	var incorrect, correct []models.Answer
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct = append(correct, a)
		} else {
			incorrect = append(incorrect, a)
		}
	}
	if len(incorrect) < cfg.NumberOfIncorrectAnswers {
		return models.GeneratedQuestion{}, errs.New(errs.KindGeneration,
			"question %s does not have enough incorrect answers: need %d, have %d",
			q.ID.Hex(), cfg.NumberOfIncorrectAnswers, len(incorrect))
	}
	if len(correct) < cfg.NumberOfCorrectAnswers {
		return models.GeneratedQuestion{}, errs.New(errs.KindGeneration,
			"question %s does not have enough correct answers: need %d, have %d",
			q.ID.Hex(), cfg.NumberOfCorrectAnswers, len(correct))
	}

	chosen := make([]models.Answer, 0, cfg.NumberOfIncorrectAnswers+cfg.NumberOfCorrectAnswers)
	chosen = append(chosen, incorrect[:cfg.NumberOfIncorrectAnswers]...)
	chosen = append(chosen, correct[:cfg.NumberOfCorrectAnswers]...)

	out := models.GeneratedQuestion{ID: q.ID}
	for _, a := range chosen {
		out.Answers = append(out.Answers, a.ID)
	}
	return out, nil
}
