// Package models defines the wire-level record shapes the engine reads
// from and writes to the document store. Field and collection names are
// contracts shared with upstream producers; they are not renamed.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names, as they exist in the document store.
const (
	CollectionExam          = "ExamEnvironmentExam"
	CollectionAttempt       = "ExamEnvironmentExamAttempt"
	CollectionGeneratedExam = "ExamEnvironmentGeneratedExam"
	CollectionModeration    = "ExamEnvironmentExamModeration"
	CollectionChallenge     = "ExamEnvironmentChallenge"
	CollectionUser          = "user"
)

// PracticeExamID is the reserved exam id whose attempts are never
// certified and are periodically purged by T1.
var PracticeExamID = mustHex("674819431ed2e8ac8d170f5e")

func mustHex(s string) primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		panic("models: invalid reserved object id literal: " + err.Error())
	}
	return oid
}

// QuestionSetType identifies the format of a QuestionSet. MultipleChoice
// is the only type named here; the generator, validators and scorer treat
// every type alike.
type QuestionSetType string

const (
	QuestionSetTypeMultipleChoice QuestionSetType = "MultipleChoice"
)

// Answer is a single selectable option on a Question.
type Answer struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Text      string             `bson:"text" json:"text"`
	IsCorrect bool               `bson:"isCorrect" json:"isCorrect"`
}

// Audio is an optional narration attached to a Question.
type Audio struct {
	URL    string `bson:"url" json:"url"`
	Locale string `bson:"locale" json:"locale"`
}

// Question is one item in a QuestionSet's pool.
type Question struct {
	ID         primitive.ObjectID `bson:"id" json:"id"`
	Text       string             `bson:"text" json:"text"`
	Tags       []string           `bson:"tags" json:"tags"`
	Audio      *Audio             `bson:"audio,omitempty" json:"audio,omitempty"`
	Deprecated bool               `bson:"deprecated" json:"deprecated"`
	Answers    []Answer           `bson:"answers" json:"answers"`
}

// HasTags reports whether the question's tag set is a superset of group.
func (q Question) HasTags(group map[string]struct{}) bool {
	if len(group) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(q.Tags))
	for _, t := range q.Tags {
		have[t] = struct{}{}
	}
	for want := range group {
		if _, ok := have[want]; !ok {
			return false
		}
	}
	return true
}

// CorrectCount returns the number of correct answers.
func (q Question) CorrectCount() int {
	n := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// IncorrectCount returns the number of incorrect answers.
func (q Question) IncorrectCount() int {
	return len(q.Answers) - q.CorrectCount()
}

// QuestionSet is a named pool of questions of a single type.
type QuestionSet struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Type      QuestionSetType    `bson:"type" json:"type"`
	Context   *string            `bson:"context,omitempty" json:"context,omitempty"`
	Questions []Question         `bson:"questions" json:"questions"`
}

// TagConfig requires numberOfQuestions questions whose tag set is a
// superset of group, drawn across the whole exam.
type TagConfig struct {
	Group             []string `bson:"group" json:"group"`
	NumberOfQuestions int      `bson:"numberOfQuestions" json:"numberOfQuestions"`
}

// GroupSet returns Group as a lookup set.
func (tc TagConfig) GroupSet() map[string]struct{} {
	set := make(map[string]struct{}, len(tc.Group))
	for _, g := range tc.Group {
		set[g] = struct{}{}
	}
	return set
}

// QuestionSetConfig is a per-type quota the generator must satisfy.
type QuestionSetConfig struct {
	Type                     QuestionSetType `bson:"type" json:"type"`
	NumberOfSet              int             `bson:"numberOfSet" json:"numberOfSet"`
	NumberOfQuestions        int             `bson:"numberOfQuestions" json:"numberOfQuestions"`
	NumberOfCorrectAnswers   int             `bson:"numberOfCorrectAnswers" json:"numberOfCorrectAnswers"`
	NumberOfIncorrectAnswers int             `bson:"numberOfIncorrectAnswers" json:"numberOfIncorrectAnswers"`
}

// Config is an exam's quota configuration.
type Config struct {
	Name           string              `bson:"name" json:"name"`
	PassingPercent float64             `bson:"passingPercent" json:"passingPercent"`
	TotalTimeInS   int                 `bson:"totalTimeInS" json:"totalTimeInS"`
	RetakeTimeInMS int64               `bson:"retakeTimeInMS" json:"retakeTimeInMS"`
	Tags           []TagConfig         `bson:"tags" json:"tags"`
	QuestionSets   []QuestionSetConfig `bson:"questionSets" json:"questionSets"`
}

// Exam is the master template. Immutable from the engine's perspective.
type Exam struct {
	ID            primitive.ObjectID   `bson:"_id" json:"id"`
	Prerequisites []primitive.ObjectID `bson:"prerequisites" json:"prerequisites"`
	Deprecated    bool                 `bson:"deprecated" json:"deprecated"`
	Version       int                  `bson:"version" json:"version"`
	Config        Config               `bson:"config" json:"config"`
	QuestionSets  []QuestionSet        `bson:"questionSets" json:"questionSets"`
}

// GeneratedQuestion is one question as offered to a candidate: the
// source question id plus the chosen, ordered answer ids.
type GeneratedQuestion struct {
	ID      primitive.ObjectID   `bson:"id" json:"id"`
	Answers []primitive.ObjectID `bson:"answers" json:"answers"`
}

// GeneratedQuestionSet is the fixed subset of one source QuestionSet
// offered to a candidate.
type GeneratedQuestionSet struct {
	ID        primitive.ObjectID  `bson:"id" json:"id"`
	Questions []GeneratedQuestion `bson:"questions" json:"questions"`
}

// GeneratedExam (aka "Generation") is the fixed, shuffled subset of a
// template presented to one candidate. Created at exam-start, never
// mutated afterwards.
type GeneratedExam struct {
	ID           primitive.ObjectID     `bson:"_id" json:"id"`
	ExamID       primitive.ObjectID     `bson:"examId" json:"examId"`
	Version      int                    `bson:"version" json:"version"`
	Deprecated   bool                   `bson:"deprecated" json:"deprecated"`
	QuestionSets []GeneratedQuestionSet `bson:"questionSets" json:"questionSets"`
}

// AttemptQuestion is a candidate's submission for one question.
type AttemptQuestion struct {
	ID             primitive.ObjectID   `bson:"id" json:"id"`
	Answers        []primitive.ObjectID `bson:"answers" json:"answers"`
	SubmissionTime *time.Time           `bson:"submissionTime,omitempty" json:"submissionTime,omitempty"`
}

// AttemptQuestionSet is a candidate's submissions for one question set.
type AttemptQuestionSet struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Questions []AttemptQuestion  `bson:"questions" json:"questions"`
}

// Attempt is a single candidate's run of an exam instance. Append-only:
// its question-set list grows as answers are submitted.
type Attempt struct {
	ID               primitive.ObjectID   `bson:"_id" json:"id"`
	UserID           primitive.ObjectID   `bson:"userId" json:"userId"`
	ExamID           primitive.ObjectID   `bson:"examId" json:"examId"`
	GeneratedExamID  primitive.ObjectID   `bson:"generatedExamId" json:"generatedExamId"`
	StartTime        time.Time            `bson:"startTime" json:"startTime"`
	Version          int                  `bson:"version" json:"version"`
	QuestionSets     []AttemptQuestionSet `bson:"questionSets" json:"questionSets"`
	ExamModerationID *primitive.ObjectID  `bson:"examModerationId,omitempty" json:"examModerationId,omitempty"`
}

// ModerationStatus is the lifecycle state of a Moderation row. The wire
// strings are exact: Approved|Denied|Pending.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "Approved"
	ModerationDenied   ModerationStatus = "Denied"
	ModerationPending  ModerationStatus = "Pending"
)

// Moderation is the lifecycle record deciding whether an attempt's
// certificate is granted.
type Moderation struct {
	ID                primitive.ObjectID  `bson:"_id" json:"id"`
	ExamAttemptID     primitive.ObjectID  `bson:"examAttemptId" json:"examAttemptId"`
	Status            ModerationStatus    `bson:"status" json:"status"`
	ModeratorID       *primitive.ObjectID `bson:"moderatorId,omitempty" json:"moderatorId,omitempty"`
	Feedback          *string             `bson:"feedback,omitempty" json:"feedback,omitempty"`
	ModerationDate    *time.Time          `bson:"moderationDate,omitempty" json:"moderationDate,omitempty"`
	SubmissionDate    time.Time           `bson:"submissionDate" json:"submissionDate"`
	ChallengesAwarded bool                `bson:"challengesAwarded" json:"challengesAwarded"`
	Version           int                 `bson:"version" json:"version"`
}

// EventKind identifies the sort of user-activity event recorded during
// an attempt. Wire strings are SCREAMING_SNAKE_CASE.
type EventKind string

const (
	EventCaptionsOpened EventKind = "CAPTIONS_OPENED"
	EventQuestionVisit  EventKind = "QUESTION_VISIT"
	EventFocus          EventKind = "FOCUS"
	EventBlur           EventKind = "BLUR"
	EventExamExit       EventKind = "EXAM_EXIT"
)

// Event is one user-activity record in the external event store.
type Event struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Kind      EventKind          `json:"kind"`
	Meta      map[string]any     `json:"meta,omitempty"`
	AttemptID primitive.ObjectID `json:"attempt_id"`
}

// Challenge maps an exam to the certification challenge it awards.
type Challenge struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ExamID      primitive.ObjectID `bson:"examId" json:"examId"`
	ChallengeID primitive.ObjectID `bson:"challengeId" json:"challengeId"`
}

// CompletedChallenge is one entry in a User's completedChallenges array.
type CompletedChallenge struct {
	ID            primitive.ObjectID `bson:"id" json:"id"`
	CompletedDate int64              `bson:"completedDate" json:"completedDate"`
	ChallengeType int                `bson:"challengeType" json:"challengeType"`
}

// User is the subset of the platform's user document the engine reads
// and writes: its completed-challenges ledger.
type User struct {
	ID                  primitive.ObjectID   `bson:"_id" json:"id"`
	CompletedChallenges []CompletedChallenge `bson:"completedChallenges" json:"completedChallenges"`
}

// ChallengeTypeCertification is the fixed challengeType value awarded
// by this engine for a passed, approved certification exam.
const ChallengeTypeCertification = 30
