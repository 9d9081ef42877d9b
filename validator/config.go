// Package validator implements the Config Validator (§4.1) and the
// Generation Validator (§4.3): pure, side-effect-free checks over
// in-memory templates and generations.
package validator

import (
	"strings"

	"examengine/errs"
	"examengine/models"
)

// ValidateConfig decides whether exam's template is solvable under its
// own configuration. It is a precondition for generation but is not
// coupled to it: callers may validate once and generate many times.
func ValidateConfig(exam models.Exam) error {
	cfg := exam.Config

	// 1. name non-empty; passingPercent in [0,100].
	if strings.TrimSpace(cfg.Name) == "" {
		return errs.New(errs.KindInvalidConfig, "config name must not be empty")
	}
	if cfg.PassingPercent < 0 || cfg.PassingPercent > 100 {
		return errs.New(errs.KindInvalidConfig, "passingPercent must be in [0,100], got %v", cfg.PassingPercent)
	}

	// Group question sets by type.
	byType := make(map[models.QuestionSetType][]models.QuestionSet)
	for _, qs := range exam.QuestionSets {
		byType[qs.Type] = append(byType[qs.Type], qs)
	}

	// 2. every TagConfig satisfiable across all non-deprecated questions.
	for _, tc := range cfg.Tags {
		group := tc.GroupSet()
		count := 0
		for _, qs := range exam.QuestionSets {
			for _, q := range qs.Questions {
				if q.Deprecated {
					continue
				}
				if q.HasTags(group) {
					count++
				}
			}
		}
		if count < tc.NumberOfQuestions {
			return errs.New(errs.KindInvalidConfig,
				"not enough questions for tag group %s: need %d, have %d",
				strings.Join(tc.Group, ","), tc.NumberOfQuestions, count)
		}
	}

	for _, qsc := range cfg.QuestionSets {
		sets := byType[qsc.Type]

		// 3. enough sets of this type.
		if len(sets) < qsc.NumberOfSet {
			return errs.New(errs.KindInvalidConfig,
				"not enough question sets of type %s: need %d, have %d",
				qsc.Type, qsc.NumberOfSet, len(sets))
		}

		// 4. at least one set with enough questions, and total capacity sufficient.
		anySetBigEnough := false
		total := 0
		for _, qs := range sets {
			n := nonDeprecatedCount(qs)
			total += n
			if n >= qsc.NumberOfQuestions {
				anySetBigEnough = true
			}
		}
		if !anySetBigEnough {
			return errs.New(errs.KindInvalidConfig,
				"no question set of type %s has %d non-deprecated questions", qsc.Type, qsc.NumberOfQuestions)
		}
		if total < qsc.NumberOfSet*qsc.NumberOfQuestions {
			return errs.New(errs.KindInvalidConfig,
				"total questions of type %s (%d) insufficient for %d sets of %d questions",
				qsc.Type, total, qsc.NumberOfSet, qsc.NumberOfQuestions)
		}

		// 5. every question in a set of this type has enough correct/incorrect answers.
		for _, qs := range sets {
			for _, q := range qs.Questions {
				if q.Deprecated {
					continue
				}
				if q.CorrectCount() < qsc.NumberOfCorrectAnswers {
					return errs.New(errs.KindInvalidConfig,
						"question %s has %d correct answers, need %d", q.ID.Hex(), q.CorrectCount(), qsc.NumberOfCorrectAnswers)
				}
				if q.IncorrectCount() < qsc.NumberOfIncorrectAnswers {
					return errs.New(errs.KindInvalidConfig,
						"question %s has %d incorrect answers, need %d", q.ID.Hex(), q.IncorrectCount(), qsc.NumberOfIncorrectAnswers)
				}
			}
		}
	}

	// 6. every question has non-empty text and >=1 correct answer; every answer has non-empty text.
	for _, qs := range exam.QuestionSets {
		for _, q := range qs.Questions {
			if q.Deprecated {
				continue
			}
			if strings.TrimSpace(q.Text) == "" {
				return errs.New(errs.KindInvalidConfig, "question %s has empty text", q.ID.Hex())
			}
			if q.CorrectCount() == 0 {
				return errs.New(errs.KindInvalidConfig, "question %s has no correct answer", q.ID.Hex())
			}
			for _, a := range q.Answers {
				if strings.TrimSpace(a.Text) == "" {
					return errs.New(errs.KindInvalidConfig, "answer %s has empty text", a.ID.Hex())
				}
			}
		}
	}

	return nil
}

func nonDeprecatedCount(qs models.QuestionSet) int {
	n := 0
	for _, q := range qs.Questions {
		if !q.Deprecated {
			n++
		}
	}
	return n
}
