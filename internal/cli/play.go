package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/channel"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/session"
)

func newPlayCmd() *cobra.Command {
	var spectate bool

	cmd := &cobra.Command{
		Use:   "play <arena-id>",
		Short: "Join an arena's live quiz as a participant (or spectator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := session.ModeParticipate
			if spectate {
				mode = session.ModeSpectate
			}
			return runSession(cmd.Context(), args[0], mode, false)
		},
	}
	cmd.Flags().BoolVar(&spectate, "spectate", false, "watch without competing")
	return cmd
}

// runSession wires the adapter, machine and terminal loops for one live
// session and blocks until the quiz ends, the connection drops for good,
// or the user quits.
func runSession(ctx context.Context, arenaID, mode string, asCreator bool) error {
	cfg := loadConfig()
	log := newLogger(cfg)

	uid := userID
	if uid == "" {
		uid = uuid.NewString()
		log.Info().Str("user_id", uid).Msg("no user id configured, generated one")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapter := channel.New(cfg.Server.WSURL, log)
	defer adapter.Close()

	machine := session.New(session.Config{
		ArenaID:   arenaID,
		UserID:    uid,
		AsCreator: asCreator,
		Mode:      mode,
		Sender:    adapter,
		Clock:     clockwork.NewRealClock(),
		Logger:    log,
	})
	defer machine.Close()

	if err := adapter.Connect(ctx, channel.Credentials{UserID: uid, Token: cfg.Auth.Token}); err != nil {
		return fmt.Errorf("connect realtime channel: %w", err)
	}
	if err := machine.Join(); err != nil {
		return fmt.Errorf("join arena: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stop()
		return machine.Run(ctx, adapter.Events())
	})

	g.Go(func() error {
		return renderLoop(ctx, machine)
	})

	g.Go(func() error {
		return inputLoop(ctx, machine, asCreator)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// renderLoop prints a fresh projection of every snapshot until the
// subscription or the context ends.
func renderLoop(ctx context.Context, machine *session.Machine) error {
	snapshots, cancel := machine.Subscribe()
	defer cancel()

	var last string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			if view := renderSnapshot(snap); view != last {
				fmt.Print(view)
				last = view
			}
		}
	}
}

// inputLoop translates terminal lines into machine actions: an option
// number selects, "s" submits, "q" quits. Hosts additionally get
// "start" and "add <question json>".
func inputLoop(ctx context.Context, machine *session.Machine, host bool) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := dispatchInput(machine, line, host); err != nil {
				if err == errQuit {
					return context.Canceled
				}
				fmt.Fprintf(os.Stderr, "! %v\n", err)
			}
		}
	}
}

var errQuit = fmt.Errorf("quit requested")

func dispatchInput(machine *session.Machine, line string, host bool) error {
	switch {
	case line == "":
		return nil
	case line == "q" || line == "quit":
		return errQuit
	case line == "s" || line == "submit":
		machine.Submit()
		return nil
	case host && line == "start":
		return machine.StartQuiz()
	case host && strings.HasPrefix(line, "add "):
		return addLiveQuestion(machine, strings.TrimPrefix(line, "add "))
	default:
		option, err := strconv.Atoi(line)
		if err != nil {
			return fmt.Errorf("unknown input %q", line)
		}
		// Options are shown 1-based.
		machine.Select(option - 1)
		return nil
	}
}
