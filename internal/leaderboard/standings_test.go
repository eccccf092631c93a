package leaderboard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/leaderboard"
)

func TestStandingsOrdering(t *testing.T) {
	participants := map[string]domain.Participant{
		"u1":   {UserID: "u1", Username: "alice", Score: 20, TimeTaken: 41.2},
		"u2":   {UserID: "u2", Username: "bob", Score: 30, TimeTaken: 55.0},
		"u3":   {UserID: "u3", Username: "carol", Score: 20, TimeTaken: 38.9},
		"host": {UserID: "host", Username: "dan", Score: 0, IsHost: true},
	}

	standings := leaderboard.Standings(participants)

	require.Len(t, standings, 3, "host must not be ranked")
	require.Equal(t, "bob", standings[0].Username)
	// Tie on score: faster cumulative time ranks higher.
	require.Equal(t, "carol", standings[1].Username)
	require.Equal(t, "alice", standings[2].Username)
	for i, entry := range standings {
		require.Equal(t, i+1, entry.Rank)
	}
}

func TestStandingsTieBreakByName(t *testing.T) {
	participants := map[string]domain.Participant{
		"u1": {UserID: "u1", Username: "zoe", Score: 10, TimeTaken: 5},
		"u2": {UserID: "u2", Username: "amy", Score: 10, TimeTaken: 5},
	}

	standings := leaderboard.Standings(participants)
	require.Equal(t, "amy", standings[0].Username)
	require.Equal(t, "zoe", standings[1].Username)
}

func TestStandingsEmpty(t *testing.T) {
	require.Empty(t, leaderboard.Standings(nil))
	require.Empty(t, leaderboard.Standings(map[string]domain.Participant{
		"h": {UserID: "h", IsHost: true},
	}))
}
