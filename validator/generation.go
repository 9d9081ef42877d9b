package validator

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/errs"
	"examengine/models"
)

// ValidateGeneration confirms a Generation has no identifier collisions
// among its sets, questions and answers, per §4.3. Ids are checked
// across all three categories combined, not just within each.
func ValidateGeneration(gen models.GeneratedExam) error {
	seen := make(map[primitive.ObjectID]string) // id -> where first seen, for a precise message
	var dupes []string

	check := func(id primitive.ObjectID, kind string) {
		if where, ok := seen[id]; ok {
			dupes = append(dupes, fmt.Sprintf("%s id %s duplicated (first seen as %s)", kind, id.Hex(), where))
			return
		}
		seen[id] = kind
	}

	for _, qs := range gen.QuestionSets {
		check(qs.ID, "set")
		for _, q := range qs.Questions {
			check(q.ID, "question")
			for _, a := range q.Answers {
				check(a, "answer")
			}
		}
	}

	if len(dupes) > 0 {
		return errs.New(errs.KindGeneration, "duplicate ids in generation %s: %s", gen.ID.Hex(), strings.Join(dupes, "; "))
	}
	return nil
}
