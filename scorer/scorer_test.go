package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/attempt"
	"examengine/models"
)

func TestCompareAnswers_ExactMatch(t *testing.T) {
	correct := primitive.NewObjectID()
	wrong := primitive.NewObjectID()
	examAnswers := []models.Answer{
		{ID: correct, IsCorrect: true},
		{ID: wrong, IsCorrect: false},
	}
	generated := []primitive.ObjectID{correct, wrong}

	assert.True(t, CompareAnswers(examAnswers, generated, []primitive.ObjectID{correct}))
	assert.False(t, CompareAnswers(examAnswers, generated, []primitive.ObjectID{wrong}))
	assert.False(t, CompareAnswers(examAnswers, generated, []primitive.ObjectID{correct, wrong}))
}

func TestCompareAnswers_MultipleCorrect(t *testing.T) {
	c1, c2, w := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	examAnswers := []models.Answer{
		{ID: c1, IsCorrect: true},
		{ID: c2, IsCorrect: true},
		{ID: w, IsCorrect: false},
	}
	generated := []primitive.ObjectID{c1, c2, w}

	assert.True(t, CompareAnswers(examAnswers, generated, []primitive.ObjectID{c1, c2}))
	assert.False(t, CompareAnswers(examAnswers, generated, []primitive.ObjectID{c1}))
}

func TestCalculateScore(t *testing.T) {
	correct := primitive.NewObjectID()
	wrong := primitive.NewObjectID()

	view := attempt.View{
		QuestionSets: []attempt.ViewQuestionSet{
			{
				Questions: []attempt.ViewQuestion{
					{
						Answers:   []models.Answer{{ID: correct, IsCorrect: true}, {ID: wrong}},
						Generated: []primitive.ObjectID{correct, wrong},
						Selected:  []primitive.ObjectID{correct},
					},
					{
						Answers:   []models.Answer{{ID: correct, IsCorrect: true}, {ID: wrong}},
						Generated: []primitive.ObjectID{correct, wrong},
						Selected:  []primitive.ObjectID{wrong},
					},
				},
			},
		},
	}

	score, err := CalculateScore(view)
	require.NoError(t, err)
	assert.Equal(t, 50.0, score)
}

func TestCalculateScore_NoGeneratedQuestions(t *testing.T) {
	view := attempt.View{
		QuestionSets: []attempt.ViewQuestionSet{
			{Questions: []attempt.ViewQuestion{{}}},
		},
	}
	_, err := CalculateScore(view)
	assert.Error(t, err)
}

func TestCheckAttemptPass(t *testing.T) {
	correct := primitive.NewObjectID()
	view := attempt.View{
		QuestionSets: []attempt.ViewQuestionSet{
			{
				Questions: []attempt.ViewQuestion{
					{
						Answers:   []models.Answer{{ID: correct, IsCorrect: true}},
						Generated: []primitive.ObjectID{correct},
						Selected:  []primitive.ObjectID{correct},
					},
				},
			},
		},
	}

	assert.True(t, CheckAttemptPass(view, 80))
	assert.False(t, CheckAttemptPass(view, 101))
}
