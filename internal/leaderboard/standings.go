// Package leaderboard derives the ranked standings view from the
// server-authoritative participant set. Ordering is a determinism
// contract: score descending, ties broken by lower cumulative answer
// time, then by username for stability.
package leaderboard

import (
	"sort"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
)

// Entry is one ranked row. Rank is 1-based.
type Entry struct {
	Rank      int     `json:"rank"`
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Score     int     `json:"score"`
	TimeTaken float64 `json:"timeTaken"`
}

// Standings ranks the given participants. Hosts are excluded from the
// ranked rows but stay untouched in the input map.
func Standings(participants map[string]domain.Participant) []Entry {
	entries := make([]Entry, 0, len(participants))
	for _, p := range participants {
		if p.IsHost {
			continue
		}
		entries = append(entries, Entry{
			UserID:    p.UserID,
			Username:  p.Username,
			Score:     p.Score,
			TimeTaken: p.TimeTaken,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].TimeTaken != entries[j].TimeTaken {
			return entries[i].TimeTaken < entries[j].TimeTaken
		}
		return entries[i].Username < entries[j].Username
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
