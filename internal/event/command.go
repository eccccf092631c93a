package event

import (
	"encoding/json"
	"fmt"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
)

// Command is an outbound request to the arena server.
type Command interface {
	CommandName() string
}

// JoinArena requests entry into an arena's live session. IsCreator and
// Mode are hints only; the server answers with the authoritative role in
// arena_joined.
type JoinArena struct {
	UserID    string `json:"userId"`
	ArenaID   string `json:"arenaId"`
	IsCreator bool   `json:"isCreator,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

func (JoinArena) CommandName() string { return "join_arena" }

// StartQuiz begins the question sequence. Host only.
type StartQuiz struct {
	ArenaID string `json:"arenaId"`
	UserID  string `json:"userId"`
}

func (StartQuiz) CommandName() string { return "start_quiz" }

// SubmitAnswer records an answer for the current question. SelectedOption
// is domain.NoAnswer when the countdown expired without a choice.
type SubmitAnswer struct {
	ParticipationID string  `json:"participationId"`
	QuestionID      string  `json:"questionId"`
	SelectedOption  int     `json:"selectedOption"`
	TimeTaken       float64 `json:"timeTaken"`
}

func (SubmitAnswer) CommandName() string { return "submit_answer" }

// AddLiveQuestion appends a question to a running session. Host only.
type AddLiveQuestion struct {
	ArenaID      string               `json:"arenaId"`
	UserID       string               `json:"userId"`
	QuestionData domain.QuestionDraft `json:"questionData"`
}

func (AddLiveQuestion) CommandName() string { return "add_live_question" }

// CompleteParticipation finalizes a participant's attempt after quiz_ended.
type CompleteParticipation struct {
	ParticipationID string `json:"participationId"`
}

func (CompleteParticipation) CommandName() string { return "complete_participation" }

// Encode wraps a command into its wire frame.
func Encode(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", cmd.CommandName(), err)
	}
	frame, err := json.Marshal(Envelope{Event: cmd.CommandName(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", cmd.CommandName(), err)
	}
	return frame, nil
}
