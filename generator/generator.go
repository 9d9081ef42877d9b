// Package generator implements the Exam Generator (§4.2): a
// constraint-satisfaction allocator that produces a per-candidate
// Generation from an exam template and a seed, satisfying every
// QuestionSetConfig and TagConfig quota without duplicating content.
//
// Grounded on original_source/exam-utils/src/misc.rs's generate_exam and
// the teacher's exam/generator.go seeded-shuffle allocation idiom.
package generator

import (
	"math/rand"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/errs"
	"examengine/models"
	"examengine/utils"
)

// DefaultPhase2Timeout is the wall-clock ceiling on Phase 2's capacity
// fill, per §4.2 (overridable via GENERATION_TIMEOUT_MS, §6).
const DefaultPhase2Timeout = 5000 * time.Millisecond

// Seed derives a deterministic int64 seed the way the teacher's
// generator does: sha256("examBankVersion:courseMarketingName:i"),
// reduced via utils.BytesToInt.
func Seed(parts ...string) int64 {
	h := sha256Sum(strings.Join(parts, ":"))
	return utils.BytesToInt(h)
}

// GenerateExam produces a Generation satisfying every TagConfig and
// QuestionSetConfig, or returns a Generation-kind error naming the
// unsatisfied constraint or a Phase-2 timeout. Deterministic for a fixed
// seed, except for the Generation's own ID, which is freshly minted on
// every call; never mutates exam.
func GenerateExam(exam models.Exam, seed int64, phase2Timeout time.Duration) (models.GeneratedExam, error) {
	if phase2Timeout <= 0 {
		phase2Timeout = DefaultPhase2Timeout
	}
	rng := rand.New(rand.NewSource(seed))

	pool := buildPool(exam, rng)
	qscList := orderedConfigs(exam.Config.QuestionSets, rng)
	tags := orderedTagStates(exam.Config.Tags)

	allocs := make([]*qscAlloc, len(qscList))
	for i, c := range qscList {
		allocs[i] = &qscAlloc{cfg: c}
	}
	consumed := make(map[primitive.ObjectID]bool)

	// Phase 1 — tag-driven allocation.
	for _, a := range allocs {
		for _, tc := range tags {
			if tc.remaining <= 0 || a.fulfilled() {
				continue
			}
			if err := allocateForTag(a, tc, pool[a.cfg.Type], consumed, rng); err != nil {
				return models.GeneratedExam{}, err
			}
		}
	}

	// Phase 2 — fill remaining capacity, ignoring tag constraints.
	deadline := time.Now().Add(phase2Timeout)
	for _, a := range allocs {
		for !a.fulfilled() {
			if time.Now().After(deadline) {
				return models.GeneratedExam{}, errs.New(errs.KindGeneration,
					"generation timed out after %s filling question set type %s", phase2Timeout, a.cfg.Type)
			}
			placed, err := fillOne(a, pool[a.cfg.Type], consumed, rng)
			if err != nil {
				return models.GeneratedExam{}, err
			}
			if !placed {
				// Nothing left to place anywhere for this qsc; further
				// spinning would never terminate before the deadline.
				return models.GeneratedExam{}, errs.New(errs.KindGeneration,
					"not enough questions of type %s to fulfil %d sets of %d questions",
					a.cfg.Type, a.cfg.NumberOfSet, a.cfg.NumberOfQuestions)
			}
		}
	}

	// Phase 3 — tag reconciliation: count incidental over-satisfaction.
	for _, a := range allocs {
		for _, w := range a.working {
			for _, gq := range w.questions {
				q := findQuestionByID(exam, gq.ID)
				if q == nil {
					continue
				}
				for _, tc := range tags {
					if tc.remaining > 0 && q.HasTags(tc.cfg.GroupSet()) {
						tc.remaining--
					}
				}
			}
		}
	}

	for _, tc := range tags {
		if tc.remaining > 0 {
			return models.GeneratedExam{}, errs.New(errs.KindGeneration,
				"not enough questions for tag group %s", strings.Join(tc.cfg.Group, ","))
		}
	}

	return assemble(exam, allocs), nil
}

// qscAlloc tracks the working sets being filled for one QuestionSetConfig.
type qscAlloc struct {
	cfg     models.QuestionSetConfig
	working []*workingSet
}

func (a *qscAlloc) fulfilled() bool {
	if len(a.working) != a.cfg.NumberOfSet {
		return false
	}
	for _, w := range a.working {
		if len(w.questions) != a.cfg.NumberOfQuestions {
			return false
		}
	}
	return true
}

func (a *qscAlloc) workingFor(sourceID primitive.ObjectID) *workingSet {
	for _, w := range a.working {
		if w.sourceID == sourceID {
			return w
		}
	}
	return nil
}

// allocateForTag scans pool (sets of a's type) for questions satisfying
// tc, placing them into a's working sets until tc is exhausted or a is
// fulfilled.
func allocateForTag(a *qscAlloc, tc *tagState, sets []*poolSet, consumed map[primitive.ObjectID]bool, rng *rand.Rand) error {
	group := tc.cfg.GroupSet()
	for _, src := range sets {
		if a.fulfilled() || tc.remaining <= 0 {
			return nil
		}
		w := a.workingFor(src.source.ID)
		if w == nil {
			if len(a.working) >= a.cfg.NumberOfSet || len(src.Questions) < a.cfg.NumberOfQuestions {
				continue
			}
			w = &workingSet{sourceID: src.source.ID}
			a.working = append(a.working, w)
		}
		if len(w.questions) >= a.cfg.NumberOfQuestions {
			continue
		}

		i := 0
		for i < len(src.Questions) {
			if a.fulfilled() || tc.remaining <= 0 || len(w.questions) >= a.cfg.NumberOfQuestions {
				break
			}
			q := src.Questions[i]
			if consumed[q.ID] || !q.HasTags(group) ||
				q.CorrectCount() < a.cfg.NumberOfCorrectAnswers ||
				q.IncorrectCount() < a.cfg.NumberOfIncorrectAnswers {
				i++
				continue
			}
			gq, err := selectRandomAnswers(q, a.cfg, rng)
			if err != nil {
				return err
			}
			w.questions = append(w.questions, gq)
			consumed[q.ID] = true
			tc.remaining--
			src.Questions = append(src.Questions[:i], src.Questions[i+1:]...)
			// i not advanced: slice shifted left.
		}
	}
	return nil
}

// fillOne places exactly one question into the first working set of a
// that still has room, ignoring tag constraints, per Phase 2. It reports false if no
// eligible question remains anywhere in sets.
func fillOne(a *qscAlloc, sets []*poolSet, consumed map[primitive.ObjectID]bool, rng *rand.Rand) (bool, error) {
	// Ensure a has enough working sets declared.
	for len(a.working) < a.cfg.NumberOfSet {
		src := nextUsableSource(sets, a, consumed)
		if src == nil {
			break
		}
		a.working = append(a.working, &workingSet{sourceID: src.source.ID})
	}

	for _, w := range a.working {
		if len(w.questions) >= a.cfg.NumberOfQuestions {
			continue
		}
		src := findPoolSet(sets, w.sourceID)
		if src == nil {
			continue
		}
		for i, q := range src.Questions {
			if consumed[q.ID] ||
				q.CorrectCount() < a.cfg.NumberOfCorrectAnswers ||
				q.IncorrectCount() < a.cfg.NumberOfIncorrectAnswers {
				continue
			}
			gq, err := selectRandomAnswers(q, a.cfg, rng)
			if err != nil {
				return false, err
			}
			w.questions = append(w.questions, gq)
			consumed[q.ID] = true
			src.Questions = append(src.Questions[:i], src.Questions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func nextUsableSource(sets []*poolSet, a *qscAlloc, consumed map[primitive.ObjectID]bool) *poolSet {
	for _, src := range sets {
		if a.workingFor(src.source.ID) != nil {
			continue
		}
		available := 0
		for _, q := range src.Questions {
			if consumed[q.ID] {
				continue
			}
			if q.CorrectCount() >= a.cfg.NumberOfCorrectAnswers && q.IncorrectCount() >= a.cfg.NumberOfIncorrectAnswers {
				available++
			}
		}
		if available > 0 {
			return src
		}
	}
	return nil
}

func findPoolSet(sets []*poolSet, id primitive.ObjectID) *poolSet {
	for _, s := range sets {
		if s.source.ID == id {
			return s
		}
	}
	return nil
}

func findQuestionByID(exam models.Exam, id primitive.ObjectID) *models.Question {
	for _, qs := range exam.QuestionSets {
		for i := range qs.Questions {
			if qs.Questions[i].ID == id {
				return &qs.Questions[i]
			}
		}
	}
	return nil
}

func assemble(exam models.Exam, allocs []*qscAlloc) models.GeneratedExam {
	gen := models.GeneratedExam{
		ID:     primitive.NewObjectID(),
		ExamID: exam.ID,
		Version: exam.Version,
	}
	for _, a := range allocs {
		for _, w := range a.working {
			gen.QuestionSets = append(gen.QuestionSets, models.GeneratedQuestionSet{
				ID:        w.sourceID,
				Questions: w.questions,
			})
		}
	}
	return gen
}
