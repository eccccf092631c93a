package cli

import (
	"fmt"
	"strings"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/leaderboard"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/session"
)

// renderSnapshot is the terminal view projection: a pure function of one
// session snapshot, no state of its own.
func renderSnapshot(snap session.Snapshot) string {
	var b strings.Builder

	switch snap.Phase {
	case domain.PhaseWaiting:
		renderWaiting(&b, snap)
	case domain.PhaseQuestionActive:
		renderQuestion(&b, snap, false)
	case domain.PhaseAnswerLocked:
		renderQuestion(&b, snap, true)
	case domain.PhaseQuizEnded:
		renderFinal(&b, snap)
	}

	if snap.Err != "" {
		fmt.Fprintf(&b, "  !! %s\n", snap.Err)
	}
	return b.String()
}

func renderWaiting(b *strings.Builder, snap session.Snapshot) {
	title := snap.Arena.Title
	if title == "" {
		title = snap.ArenaID
	}
	fmt.Fprintf(b, "\n=== %s [%s, %s] ===\n", title, snap.Role, snap.Connection)
	if snap.Role == domain.RoleHost {
		fmt.Fprintln(b, "Waiting room. Type 'start' to begin the quiz.")
	} else {
		fmt.Fprintln(b, "Waiting for the host to start...")
	}
	renderStandings(b, snap, "Lobby")
}

func renderQuestion(b *strings.Builder, snap session.Snapshot, locked bool) {
	if snap.Question == nil {
		return
	}
	fmt.Fprintf(b, "\nQ%d/%d (%ds left): %s\n",
		snap.QuestionIndex, snap.TotalQuestions, snap.TimeRemaining, snap.Question.Text)
	for i, opt := range snap.Question.Options {
		marker := " "
		if i == snap.Selection {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %d. %s\n", marker, i+1, opt)
	}
	if locked {
		if snap.LastResult != nil {
			verdict := "wrong"
			if snap.LastResult.IsCorrect {
				verdict = "correct"
			}
			fmt.Fprintf(b, "Answer %s: +%d points (total %d)\n",
				verdict, snap.LastResult.PointsAwarded, snap.LastResult.TotalScore)
		} else {
			fmt.Fprintln(b, "Answer locked, waiting for the result...")
		}
	} else if snap.Role == domain.RoleParticipant {
		fmt.Fprintln(b, "Pick an option number, 's' to submit.")
	}
	if snap.LiveQuestionAck != nil && snap.Role == domain.RoleHost {
		if *snap.LiveQuestionAck {
			fmt.Fprintln(b, "Live question accepted.")
		} else {
			fmt.Fprintln(b, "Live question rejected.")
		}
	}
}

func renderFinal(b *strings.Builder, snap session.Snapshot) {
	fmt.Fprintf(b, "\n=== Quiz over: %s ===\n", snap.Arena.Title)
	renderStandings(b, snap, "Final standings")
}

func renderStandings(b *strings.Builder, snap session.Snapshot, heading string) {
	standings := leaderboard.Standings(snap.Participants)
	if len(standings) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for _, entry := range standings {
		you := ""
		if entry.UserID == snap.UserID {
			you = " (you)"
		}
		fmt.Fprintf(b, " %2d. %-20s %4d pts %7.1fs%s\n",
			entry.Rank, entry.Username, entry.Score, entry.TimeTaken, you)
	}
}
