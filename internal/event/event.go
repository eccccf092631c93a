// Package event defines the realtime wire contract between the client and
// the arena server: an envelope of {"event": name, "data": payload}, the
// inbound event payloads and the outbound command payloads.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
)

// Event is an inbound realtime event decoded from the wire.
type Event interface {
	Name() string
}

// Envelope is the raw frame shape on the wire, both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ArenaJoined confirms a join request. ParticipationID is empty for the
// host and for spectators.
type ArenaJoined struct {
	Arena           domain.Arena `json:"arena"`
	IsCreator       bool         `json:"isCreator"`
	ParticipationID string       `json:"participationId,omitempty"`
}

func (ArenaJoined) Name() string { return "arena_joined" }

// ParticipantsUpdated carries the full, authoritative participant set.
// It is decoded from user_joined, user_left and leaderboard_update, which
// share a payload shape; the source name is preserved for logging.
type ParticipantsUpdated struct {
	Participants []domain.Participant `json:"participants"`

	source string
}

func (e ParticipantsUpdated) Name() string {
	if e.source == "" {
		return "leaderboard_update"
	}
	return e.source
}

// QuestionBroadcast installs the next question. QuestionNumber is 1-based.
type QuestionBroadcast struct {
	Question       domain.Question `json:"question"`
	QuestionNumber int             `json:"questionNumber"`
	TotalQuestions int             `json:"totalQuestions"`
}

func (QuestionBroadcast) Name() string { return "question" }

// AnswerSubmitted reports the server-side scoring of the last submission.
type AnswerSubmitted struct {
	IsCorrect  bool `json:"isCorrect"`
	Points     int  `json:"points"`
	TotalScore int  `json:"totalScore"`
}

func (AnswerSubmitted) Name() string { return "answer_submitted" }

// QuizEnded carries the final standings and terminates the session.
type QuizEnded struct {
	Participants []domain.Participant `json:"participants"`
}

func (QuizEnded) Name() string { return "quiz_ended" }

// QuestionAdded acknowledges a host's add_live_question command.
type QuestionAdded struct {
	Success bool `json:"success"`
}

func (QuestionAdded) Name() string { return "question_added" }

// ArenaError is a server-reported session-level error.
type ArenaError struct {
	Message string `json:"message"`
}

func (ArenaError) Name() string { return "arena_error" }

// AnswerError is a server-reported submission error.
type AnswerError struct {
	Message string `json:"message"`
}

func (AnswerError) Name() string { return "answer_error" }

// ConnectionChanged is a synthetic local event the channel adapter injects
// into the event stream so connection lifecycle flows through the same
// queue as server events. It never appears on the wire.
type ConnectionChanged struct {
	State domain.ConnectionState
	Err   string
}

func (ConnectionChanged) Name() string { return "connection_changed" }

// Decode parses one wire frame into its typed event.
func Decode(frame []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return decodeData(env.Event, env.Data)
}

func decodeData(name string, data json.RawMessage) (Event, error) {
	switch name {
	case "arena_joined":
		return unmarshalEvent[ArenaJoined](name, data)
	case "user_joined", "user_left", "leaderboard_update":
		ev, err := unmarshalEvent[ParticipantsUpdated](name, data)
		if err != nil {
			return nil, err
		}
		ev.source = name
		return ev, nil
	case "question":
		return unmarshalEvent[QuestionBroadcast](name, data)
	case "answer_submitted":
		return unmarshalEvent[AnswerSubmitted](name, data)
	case "quiz_ended":
		return unmarshalEvent[QuizEnded](name, data)
	case "question_added":
		return unmarshalEvent[QuestionAdded](name, data)
	case "arena_error":
		return unmarshalEvent[ArenaError](name, data)
	case "answer_error":
		return unmarshalEvent[AnswerError](name, data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, name)
	}
}

func unmarshalEvent[T Event](name string, data json.RawMessage) (T, error) {
	var ev T
	if len(data) == 0 {
		return ev, nil
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("decode %s payload: %w", name, err)
	}
	return ev, nil
}
