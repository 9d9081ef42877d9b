package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/models"
)

func makeAnswer(correct bool) models.Answer {
	return models.Answer{ID: primitive.NewObjectID(), Text: "an answer", IsCorrect: correct}
}

func makeQuestion(tags []string, correct, incorrect int) models.Question {
	q := models.Question{ID: primitive.NewObjectID(), Text: "a question", Tags: tags}
	for i := 0; i < correct; i++ {
		q.Answers = append(q.Answers, makeAnswer(true))
	}
	for i := 0; i < incorrect; i++ {
		q.Answers = append(q.Answers, makeAnswer(false))
	}
	return q
}

func makeQuestionSet(t models.QuestionSetType, questions ...models.Question) models.QuestionSet {
	return models.QuestionSet{ID: primitive.NewObjectID(), Type: t, Questions: questions}
}

func validExam() models.Exam {
	var questions []models.Question
	for i := 0; i < 5; i++ {
		questions = append(questions, makeQuestion([]string{"networking"}, 1, 3))
	}
	return models.Exam{
		ID: primitive.NewObjectID(),
		Config: models.Config{
			Name:           "networking basics",
			PassingPercent: 70,
			TotalTimeInS:   3600,
			Tags: []models.TagConfig{
				{Group: []string{"networking"}, NumberOfQuestions: 4},
			},
			QuestionSets: []models.QuestionSetConfig{
				{
					Type:                     models.QuestionSetTypeMultipleChoice,
					NumberOfSet:              2,
					NumberOfQuestions:        3,
					NumberOfCorrectAnswers:   1,
					NumberOfIncorrectAnswers: 3,
				},
			},
		},
		QuestionSets: []models.QuestionSet{
			makeQuestionSet(models.QuestionSetTypeMultipleChoice, questions...),
			makeQuestionSet(models.QuestionSetTypeMultipleChoice, questions...),
			makeQuestionSet(models.QuestionSetTypeMultipleChoice, questions...),
			makeQuestionSet(models.QuestionSetTypeMultipleChoice, questions...),
		},
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	require.NoError(t, ValidateConfig(validExam()))
}

func TestValidateConfig_EmptyName(t *testing.T) {
	exam := validExam()
	exam.Config.Name = "   "
	assert.Error(t, ValidateConfig(exam))
}

func TestValidateConfig_PassingPercentOutOfRange(t *testing.T) {
	exam := validExam()
	exam.Config.PassingPercent = 101
	assert.Error(t, ValidateConfig(exam))
}

func TestValidateConfig_NotEnoughTaggedQuestions(t *testing.T) {
	exam := validExam()
	exam.Config.Tags[0].NumberOfQuestions = 1000
	err := ValidateConfig(exam)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag group")
}

func TestValidateConfig_NotEnoughSetsOfType(t *testing.T) {
	exam := validExam()
	exam.Config.QuestionSets[0].NumberOfSet = 99
	err := ValidateConfig(exam)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough question sets")
}

func TestValidateConfig_NoSetBigEnough(t *testing.T) {
	exam := validExam()
	exam.Config.QuestionSets[0].NumberOfQuestions = 99
	err := ValidateConfig(exam)
	require.Error(t, err)
}

func TestValidateConfig_InsufficientCorrectAnswers(t *testing.T) {
	exam := validExam()
	exam.Config.QuestionSets[0].NumberOfCorrectAnswers = 5
	err := ValidateConfig(exam)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "correct answers")
}

func TestValidateConfig_EmptyQuestionText(t *testing.T) {
	exam := validExam()
	exam.QuestionSets[0].Questions[0].Text = ""
	err := ValidateConfig(exam)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty text")
}

func TestValidateConfig_NoCorrectAnswer(t *testing.T) {
	exam := validExam()
	for i := range exam.QuestionSets[0].Questions[0].Answers {
		exam.QuestionSets[0].Questions[0].Answers[i].IsCorrect = false
	}
	err := ValidateConfig(exam)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 0 correct answers")
}

func TestValidateConfig_DeprecatedQuestionsIgnored(t *testing.T) {
	exam := validExam()
	// Deprecate one question and empty its text; should not fail
	// validation since deprecated questions are skipped by checks 5/6.
	exam.QuestionSets[0].Questions[0].Deprecated = true
	exam.QuestionSets[0].Questions[0].Text = ""
	require.NoError(t, ValidateConfig(exam))
}

func TestValidateGeneration_NoDuplicates(t *testing.T) {
	gen := models.GeneratedExam{
		ID: primitive.NewObjectID(),
		QuestionSets: []models.GeneratedQuestionSet{
			{
				ID: primitive.NewObjectID(),
				Questions: []models.GeneratedQuestion{
					{ID: primitive.NewObjectID(), Answers: []primitive.ObjectID{primitive.NewObjectID()}},
				},
			},
		},
	}
	require.NoError(t, ValidateGeneration(gen))
}

func TestValidateGeneration_DuplicateQuestionID(t *testing.T) {
	dupQ := primitive.NewObjectID()
	gen := models.GeneratedExam{
		ID: primitive.NewObjectID(),
		QuestionSets: []models.GeneratedQuestionSet{
			{ID: primitive.NewObjectID(), Questions: []models.GeneratedQuestion{{ID: dupQ}}},
			{ID: primitive.NewObjectID(), Questions: []models.GeneratedQuestion{{ID: dupQ}}},
		},
	}
	err := ValidateGeneration(gen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question id")
}

func TestValidateGeneration_DuplicateAcrossCategories(t *testing.T) {
	sharedID := primitive.NewObjectID()
	gen := models.GeneratedExam{
		ID: primitive.NewObjectID(),
		QuestionSets: []models.GeneratedQuestionSet{
			{
				ID: sharedID,
				Questions: []models.GeneratedQuestion{
					{ID: primitive.NewObjectID(), Answers: []primitive.ObjectID{sharedID}},
				},
			},
		},
	}
	err := ValidateGeneration(gen)
	require.Error(t, err)
}
