package attempt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/models"
)

func TestConstruct_FullySubmitted(t *testing.T) {
	examID := primitive.NewObjectID()
	setID := primitive.NewObjectID()
	qID := primitive.NewObjectID()
	correct := primitive.NewObjectID()
	wrong := primitive.NewObjectID()
	submissionTime := time.Now()

	exam := models.Exam{
		ID: examID,
		QuestionSets: []models.QuestionSet{
			{
				ID: setID,
				Questions: []models.Question{
					{
						ID: qID,
						Answers: []models.Answer{
							{ID: correct, IsCorrect: true},
							{ID: wrong, IsCorrect: false},
						},
					},
				},
			},
		},
	}
	gen := models.GeneratedExam{
		ID:     primitive.NewObjectID(),
		ExamID: examID,
		QuestionSets: []models.GeneratedQuestionSet{
			{ID: setID, Questions: []models.GeneratedQuestion{{ID: qID, Answers: []primitive.ObjectID{correct, wrong}}}},
		},
	}
	raw := models.Attempt{
		ExamID: examID,
		QuestionSets: []models.AttemptQuestionSet{
			{ID: setID, Questions: []models.AttemptQuestion{
				{ID: qID, Answers: []primitive.ObjectID{correct}, SubmissionTime: &submissionTime},
			}},
		},
	}

	view := Construct(exam, gen, raw)

	require.Len(t, view.QuestionSets, 1)
	require.Len(t, view.QuestionSets[0].Questions, 1)
	q := view.QuestionSets[0].Questions[0]
	assert.Equal(t, qID, q.ID)
	assert.Len(t, q.Answers, 2)
	assert.ElementsMatch(t, []primitive.ObjectID{correct, wrong}, q.Generated)
	assert.ElementsMatch(t, []primitive.ObjectID{correct}, q.Selected)
	require.NotNil(t, q.SubmissionTime)
	assert.Equal(t, submissionTime, *q.SubmissionTime)
}

func TestConstruct_SkippedQuestionSet(t *testing.T) {
	examID := primitive.NewObjectID()
	setID := primitive.NewObjectID()
	qID := primitive.NewObjectID()

	exam := models.Exam{
		ID: examID,
		QuestionSets: []models.QuestionSet{
			{ID: setID, Questions: []models.Question{{ID: qID, Answers: []models.Answer{{ID: primitive.NewObjectID(), IsCorrect: true}}}}},
		},
	}
	gen := models.GeneratedExam{ExamID: examID} // no generated sets at all
	raw := models.Attempt{ExamID: examID}       // user never touched this set

	view := Construct(exam, gen, raw)

	require.Len(t, view.QuestionSets, 1)
	require.Len(t, view.QuestionSets[0].Questions, 1)
	q := view.QuestionSets[0].Questions[0]
	assert.Empty(t, q.Generated)
	assert.Empty(t, q.Selected)
	assert.Nil(t, q.SubmissionTime)
}
