package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/config"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/rest"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/session"
)

func newHostCmd() *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "host <arena-id>",
		Short: "Run an arena's live quiz as its creator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arenaID := args[0]
			cfg := loadConfig()

			if !skipPreflight {
				if err := hostPreflight(cmd.Context(), cfg, arenaID); err != nil {
					return err
				}
			}
			return runSession(cmd.Context(), arenaID, "", true)
		},
	}
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "skip the REST ownership check before connecting")
	return cmd
}

// hostPreflight checks arena ownership over REST before opening the
// realtime channel. The server still decides the role on arena_joined;
// this only fails fast on an obvious mismatch.
func hostPreflight(ctx context.Context, cfg config.Config, arenaID string) error {
	log := newLogger(cfg)

	client := rest.NewClient(cfg.Server.APIURL, log)
	client.SetToken(cfg.Auth.Token)
	cache := rest.NewArenaCache(client, config.TTLDuration(cfg.Arena.CacheTTL, 5*time.Minute), nil)

	arena, err := cache.GetArena(ctx, arenaID)
	if err != nil {
		return fmt.Errorf("load arena %s: %w", arenaID, err)
	}
	if userID != "" && arena.CreatorID != "" && arena.CreatorID != userID {
		return fmt.Errorf("arena %s: %w", arenaID, domain.ErrNotHost)
	}
	log.Info().Str("arena_id", arenaID).Str("title", arena.Title).Msg("hosting arena")
	return nil
}

// addLiveQuestion parses a one-line JSON question draft and pushes it
// into the running session.
func addLiveQuestion(machine *session.Machine, raw string) error {
	var draft domain.QuestionDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return fmt.Errorf("parse question: %w", err)
	}
	if draft.Text == "" || len(draft.Options) < 2 {
		return fmt.Errorf("question needs text and at least two options")
	}
	if draft.CorrectOption < 0 || draft.CorrectOption >= len(draft.Options) {
		return fmt.Errorf("correctOption out of range")
	}
	if draft.TimeLimitSeconds <= 0 {
		draft.TimeLimitSeconds = 30
	}
	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}
	return machine.AddLiveQuestion(draft)
}
