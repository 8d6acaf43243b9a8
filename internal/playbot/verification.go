package playbot

import (
	"fmt"

	"github.com/okian/spotcheck/internal/domain/scoring"
	"github.com/okian/spotcheck/internal/domain/types"
)

// verifyResult checks one result against the hits the player counted.
func verifyResult(res types.ResultView, hits int) error {
	if res.IssuesFound != hits {
		return fmt.Errorf("%w: %s found %d, player counted %d", ErrScoreMismatch, res.SessionID, res.IssuesFound, hits)
	}
	if len(res.FoundIDs) != res.IssuesFound {
		return fmt.Errorf("%w: %s lists %d found ids for %d issues", ErrScoreMismatch, res.SessionID, len(res.FoundIDs), res.IssuesFound)
	}
	wantBonus := 0
	if res.IssuesFound >= res.MaxCorrect {
		wantBonus = res.TimeRemaining
	}
	if res.TimeBonus != wantBonus {
		return fmt.Errorf("%w: %s bonus %d, want %d", ErrScoreMismatch, res.SessionID, res.TimeBonus, wantBonus)
	}
	if res.TotalScore != res.IssuesFound+res.TimeBonus {
		return fmt.Errorf("%w: %s total %d, want %d", ErrScoreMismatch, res.SessionID, res.TotalScore, res.IssuesFound+res.TimeBonus)
	}
	if v, _ := scoring.Judge(res.IssuesFound, res.MaxCorrect); string(v) != res.Verdict {
		return fmt.Errorf("%w: %s verdict %q, want %q", ErrScoreMismatch, res.SessionID, res.Verdict, v)
	}
	return nil
}

// verifyLeaderboard checks ranks are dense from one and scores never rise.
func verifyLeaderboard(board []types.LeaderboardEntry) error {
	for i, e := range board {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: row %d has rank %d", ErrBoardUnordered, i, e.Rank)
		}
		if i > 0 && e.TotalScore > board[i-1].TotalScore {
			return fmt.Errorf("%w: %s (%d) above %s (%d)", ErrBoardUnordered,
				board[i-1].Name, board[i-1].TotalScore, e.Name, e.TotalScore)
		}
	}
	return nil
}
