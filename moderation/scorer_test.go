package moderation

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"examengine/attempt"
	"examengine/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func viewWithSubmission(start, submission time.Time) attempt.View {
	return attempt.View{
		StartTime: start,
		QuestionSets: []attempt.ViewQuestionSet{
			{
				Questions: []attempt.ViewQuestion{
					{SubmissionTime: &submission},
				},
			},
		},
	}
}

func TestScore_NoSubmission(t *testing.T) {
	view := attempt.View{
		StartTime:    time.Now(),
		QuestionSets: []attempt.ViewQuestionSet{{Questions: []attempt.ViewQuestion{{}}}},
	}
	score, err := Score(view, nil, 3600, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestScore_NoEvents_FastSubmission(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	submission := start.Add(10 * time.Minute)
	view := viewWithSubmission(start, submission)

	score, err := Score(view, nil, 3600, testLogger())
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScore_FullDuration_NoBlur(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	submission := start.Add(3600 * time.Second)
	view := viewWithSubmission(start, submission)

	score, err := Score(view, nil, 3600, testLogger())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 0.0001)
}

func TestScore_BlurBeforeSubmission_IncreasesScore(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	submission := start.Add(30 * time.Minute)
	view := viewWithSubmission(start, submission)

	attemptID := primitive.NewObjectID()
	events := []models.Event{
		{AttemptID: attemptID, Kind: models.EventBlur, Timestamp: start.Add(5 * time.Minute)},
		{AttemptID: attemptID, Kind: models.EventFocus, Timestamp: start.Add(10 * time.Minute)},
	}

	withoutBlur, err := Score(view, nil, 3600, testLogger())
	require.NoError(t, err)
	withBlur, err := Score(view, events, 3600, testLogger())
	require.NoError(t, err)

	assert.Greater(t, withBlur, withoutBlur)
	assert.LessOrEqual(t, withBlur, 1.0)
}

func TestScore_UnpairedBlur_Ignored(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	submission := start.Add(30 * time.Minute)
	view := viewWithSubmission(start, submission)

	events := []models.Event{
		{Kind: models.EventBlur, Timestamp: start.Add(5 * time.Minute)},
	}

	score, err := Score(view, events, 3600, testLogger())
	require.NoError(t, err)
	baseline, err := Score(view, nil, 3600, testLogger())
	require.NoError(t, err)
	assert.Equal(t, baseline, score)
}

func TestScore_InvalidTotalTime(t *testing.T) {
	start := time.Now()
	view := viewWithSubmission(start, start.Add(time.Minute))
	_, err := Score(view, nil, 0, testLogger())
	assert.Error(t, err)
}
