// Package scoring derives the final score of a finished session.
//
// Found hotspots score one point each. Remaining seconds become a time bonus
// only on a perfect clear; partial runs never earn it.
package scoring

import (
	"fmt"

	"github.com/okian/spotcheck/internal/domain/model"
)

// Verdict thresholds.
const (
	encouragingAbove = 4
)

// Verdict classifies a result for the summary screen.
type Verdict string

// Verdicts.
const (
	VerdictPerfect  Verdict = "perfect"
	VerdictGood     Verdict = "good"
	VerdictTryAgain Verdict = "try_again"
)

// Result contains the computed score for a session.
type Result struct {
	IssuesFound          int     `json:"issues_found"`
	MaxCorrect           int     `json:"max_correct"`
	TimeRemainingSeconds int     `json:"time_remaining_seconds"`
	TimeBonus            int     `json:"time_bonus"`
	TotalScore           int     `json:"total_score"`
	Verdict              Verdict `json:"verdict"`
	Headline             string  `json:"headline"`
}

// Compute scores a terminal snapshot against a catalog of maxCorrect hotspots.
func Compute(snap model.Snapshot, maxCorrect int) Result {
	remaining := snap.SecondsRemaining
	if remaining < 0 {
		remaining = 0
	}
	bonus := 0
	if snap.TotalValid >= maxCorrect {
		bonus = remaining
	}
	v, headline := Judge(snap.TotalValid, maxCorrect)
	return Result{
		IssuesFound:          snap.TotalValid,
		MaxCorrect:           maxCorrect,
		TimeRemainingSeconds: remaining,
		TimeBonus:            bonus,
		TotalScore:           snap.TotalValid + bonus,
		Verdict:              v,
		Headline:             headline,
	}
}

// Judge picks the verdict and headline for issuesFound out of maxCorrect.
func Judge(issuesFound, maxCorrect int) (Verdict, string) {
	switch {
	case issuesFound >= maxCorrect:
		return VerdictPerfect, fmt.Sprintf("Perfect! %d / %d", maxCorrect, maxCorrect)
	case issuesFound > encouragingAbove:
		return VerdictGood, fmt.Sprintf("You got %d / %d. Well done!", issuesFound, maxCorrect)
	default:
		return VerdictTryAgain, fmt.Sprintf("You got %d / %d. Better luck next time!", issuesFound, maxCorrect)
	}
}
