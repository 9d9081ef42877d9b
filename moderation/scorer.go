// Package moderation implements the Moderation Scorer (§4.6): a bounded
// 0.0-1.0 suspicion heuristic derived from an Attempt View's timing and
// its focus/blur event stream.
//
// Grounded on original_source/exam-utils/src/misc.rs's
// get_moderation_score.
package moderation

import (
	"log/slog"
	"sort"
	"time"

	"examengine/attempt"
	"examengine/errs"
	"examengine/models"
)

// weight is each of the four conceptual contributions' share; only
// three are implemented (§4.6, §9 "Open questions, decided"). The fourth
// slot is intentionally left at zero and is not approximated.
const weight = 0.25

// Score returns a value in [0,1] — higher means more suspicious — given
// an Attempt View and its chronologically sortable event stream.
// totalTimeInS is the exam's configured total time.
func Score(view attempt.View, events []models.Event, totalTimeInS int, log *slog.Logger) (float64, error) {
	sorted := append([]models.Event(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	lastSubmission, ok := lastSubmissionTime(view)
	if !ok {
		log.Warn("moderation score: attempt has no submitted questions, returning 0")
		return 0.0, nil
	}

	totalTime := float64(totalTimeInS)
	if totalTime <= 0 {
		return 0, errs.New(errs.KindModerationScore, "exam totalTimeInS must be > 0, got %d", totalTimeInS)
	}

	totalTimeTaken := lastSubmission.Sub(view.StartTime).Seconds()
	totalBlurTime, totalBlurBeforeLast := blurDurations(sorted, lastSubmission)

	if totalTimeTaken > totalTime {
		return 0, errs.New(errs.KindModerationScore, "totalTimeTaken (%.2fs) exceeds totalTimeInS (%.2fs)", totalTimeTaken, totalTime)
	}
	if totalBlurTime > totalTime {
		return 0, errs.New(errs.KindModerationScore, "totalBlurTime (%.2fs) exceeds totalTimeInS (%.2fs)", totalBlurTime, totalTime)
	}
	if totalBlurBeforeLast > totalBlurTime {
		return 0, errs.New(errs.KindModerationScore, "totalBlurBeforeLast (%.2fs) exceeds totalBlurTime (%.2fs)", totalBlurBeforeLast, totalBlurTime)
	}
	if totalTimeTaken > 0 && totalBlurBeforeLast > totalTimeTaken {
		return 0, errs.New(errs.KindModerationScore, "totalBlurBeforeLast (%.2fs) exceeds totalTimeTaken (%.2fs)", totalBlurBeforeLast, totalTimeTaken)
	}

	timeWeight := ((totalTime - totalTimeTaken) / totalTime) * weight
	blurWeight := (totalBlurTime / totalTime) * weight

	var blurBeforeWeight float64
	if totalTimeTaken > 0 {
		blurBeforeWeight = (totalBlurBeforeLast / totalTimeTaken) * weight * 2
	}

	sum := timeWeight + blurWeight + blurBeforeWeight
	if sum > 1.0 {
		log.Error("moderation score exceeded 1.0, clamping", "raw", sum)
		return 1.0, nil
	}
	return sum, nil
}

func lastSubmissionTime(view attempt.View) (time.Time, bool) {
	var last time.Time
	found := false
	for _, qs := range view.QuestionSets {
		for _, q := range qs.Questions {
			if q.SubmissionTime == nil {
				continue
			}
			if !found || q.SubmissionTime.After(last) {
				last = *q.SubmissionTime
				found = true
			}
		}
	}
	return last, found
}

// blurDurations accumulates the time between each adjacent Blur->Focus
// pair into totalBlurTime, and additionally into totalBlurBeforeLast
// when the Focus event precedes lastSubmission. Unpaired blurs are
// ignored.
func blurDurations(sorted []models.Event, lastSubmission time.Time) (totalBlurTime, totalBlurBeforeLast float64) {
	var pendingBlur *time.Time
	for _, ev := range sorted {
		switch ev.Kind {
		case models.EventBlur:
			t := ev.Timestamp
			pendingBlur = &t
		case models.EventFocus:
			if pendingBlur == nil {
				continue
			}
			delta := ev.Timestamp.Sub(*pendingBlur).Seconds()
			if delta < 0 {
				pendingBlur = nil
				continue
			}
			totalBlurTime += delta
			if ev.Timestamp.Before(lastSubmission) {
				totalBlurBeforeLast += delta
			}
			pendingBlur = nil
		}
	}
	return totalBlurTime, totalBlurBeforeLast
}
