package pipeline

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"examengine/errs"
	"examengine/models"
	"examengine/validator"
)

// ValidationTally summarises a validate-generations run.
type ValidationTally struct {
	Checked int
	Passed  int
	Failed  int
}

// ValidateGenerations is §4.11's validate-generations command: re-runs
// the Generation Validator on every stored Generation, reporting a
// pass/fail tally without mutating anything. A Generation whose parent
// Exam cannot be loaded counts as failed; the Exam itself takes no part
// in the validation.
//
// Grounded on the original system's validate_all_generations tool.
func (r *Runner) ValidateGenerations(ctx context.Context) (ValidationTally, error) {
	var tally ValidationTally

	examCache := make(map[string]models.Exam)

	cur, err := r.Store.Generations().Find(ctx, bson.M{})
	if err != nil {
		return tally, errs.Wrap(errs.KindStorageIO, err, "validate-generations: find generations")
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var gen models.GeneratedExam
		if err := cur.Decode(&gen); err != nil {
			r.Log.Warn("validate-generations: unable to deserialize generation", "error", err)
			continue
		}
		tally.Checked++

		key := gen.ExamID.Hex()
		exam, ok := examCache[key]
		if !ok {
			var err error
			exam, err = r.Store.FindExam(ctx, gen.ExamID)
			if err != nil {
				r.Log.Warn("validate-generations: exam missing for generation", "generation", gen.ID.Hex(), "exam", key)
				tally.Failed++
				continue
			}
			examCache[key] = exam
		}

		if err := validator.ValidateGeneration(gen); err != nil {
			r.Log.Warn("validate-generations: invalid generation", "generation", gen.ID.Hex(), "error", err)
			tally.Failed++
			continue
		}
		tally.Passed++
	}
	return tally, cur.Err()
}
