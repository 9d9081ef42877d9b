package generator

import (
	"math/rand"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/models"
)

// poolSet is a working copy of one source QuestionSet: deprecated
// questions removed, remaining question and per-question answer order
// shuffled under the generator's seed. Questions are removed from
// Questions as they are consumed so no question is placed twice.
type poolSet struct {
	source    models.QuestionSet
	Questions []models.Question
}

// buildPool normalises the template into a per-type pool of poolSets,
// per §4.2's "inputs are first normalised" step. It never mutates exam.
func buildPool(exam models.Exam, rng *rand.Rand) map[models.QuestionSetType][]*poolSet {
	pool := make(map[models.QuestionSetType][]*poolSet)
	for _, qs := range exam.QuestionSets {
		kept := make([]models.Question, 0, len(qs.Questions))
		for _, q := range qs.Questions {
			if q.Deprecated {
				continue
			}
			kept = append(kept, shuffleAnswers(q, rng))
		}
		rng.Shuffle(len(kept), func(i, j int) { kept[i], kept[j] = kept[j], kept[i] })
		pool[qs.Type] = append(pool[qs.Type], &poolSet{source: qs, Questions: kept})
	}
	types := make([]models.QuestionSetType, 0, len(pool))
	for t := range pool {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		sets := pool[t]
		rng.Shuffle(len(sets), func(i, j int) { sets[i], sets[j] = sets[j], sets[i] })
	}
	return pool
}

// shuffleAnswers returns a copy of q with its Answers slice shuffled.
func shuffleAnswers(q models.Question, rng *rand.Rand) models.Question {
	cp := q
	cp.Answers = append([]models.Answer(nil), q.Answers...)
	rng.Shuffle(len(cp.Answers), func(i, j int) { cp.Answers[i], cp.Answers[j] = cp.Answers[j], cp.Answers[i] })
	return cp
}

// orderedConfigs groups QuestionSetConfigs of the same type together and
// lightly shuffles within each group, per §4.2's retry heuristic.
func orderedConfigs(configs []models.QuestionSetConfig, rng *rand.Rand) []models.QuestionSetConfig {
	byType := make(map[models.QuestionSetType][]models.QuestionSetConfig)
	var types []models.QuestionSetType
	for _, c := range configs {
		if _, ok := byType[c.Type]; !ok {
			types = append(types, c.Type)
		}
		byType[c.Type] = append(byType[c.Type], c)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	out := make([]models.QuestionSetConfig, 0, len(configs))
	for _, t := range types {
		group := byType[t]
		rng.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		out = append(out, group...)
	}
	return out
}

// tagState is a mutable working copy of a TagConfig's remaining quota.
type tagState struct {
	cfg       models.TagConfig
	remaining int
}

// orderedTagStates copies cfg's tags and sorts them by |group| descending
// (longest, most restrictive, first), per §4.2.
func orderedTagStates(tags []models.TagConfig) []*tagState {
	out := make([]*tagState, len(tags))
	for i, tc := range tags {
		out[i] = &tagState{cfg: tc, remaining: tc.NumberOfQuestions}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].cfg.Group) > len(out[j].cfg.Group)
	})
	return out
}

// workingSet is a GeneratedQuestionSet under construction, tied to the
// source QuestionSet it's being filled from.
type workingSet struct {
	sourceID  primitive.ObjectID
	questions []models.GeneratedQuestion
}
