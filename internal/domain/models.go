package domain

// Role is the client's part in a live arena session. The server is
// authoritative: the role requested at join time is only a hint, the
// arena_joined payload decides.
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
	RoleSpectator   Role = "spectator"
)

// Phase is the session lifecycle stage. quiz_ended is terminal.
type Phase string

const (
	PhaseWaiting        Phase = "waiting"
	PhaseQuestionActive Phase = "question_active"
	PhaseAnswerLocked   Phase = "answer_locked"
	PhaseQuizEnded      Phase = "quiz_ended"
)

// ConnectionState tracks the realtime channel lifecycle.
type ConnectionState string

const (
	ConnDisconnected ConnectionState = "disconnected"
	ConnConnecting   ConnectionState = "connecting"
	ConnConnected    ConnectionState = "connected"
	ConnError        ConnectionState = "error"
)

// NoAnswer is the selectedOption sentinel sent when a participant
// ran out of time without choosing an option.
const NoAnswer = -1

// Arena is the quiz definition snapshot delivered on join.
type Arena struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	CreatorID     string `json:"creatorId"`
	QuestionCount int    `json:"questionCount"`
}

// Question is a broadcast question as non-host clients see it:
// option labels only, correctness stays on the server.
type Question struct {
	ID               string   `json:"id"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// QuestionDraft is the host-side payload for adding a question to a
// running session or editing an arena over REST. Correctness is known
// here because only the creator builds drafts.
type QuestionDraft struct {
	ID               string   `json:"id,omitempty"`
	Text             string   `json:"text"`
	Options          []string `json:"options"`
	CorrectOption    int      `json:"correctOption"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

// Participant is one entry in the server-authoritative participant set.
// TimeTaken is cumulative answering time in seconds, used for tie-breaks.
type Participant struct {
	UserID    string  `json:"userId"`
	Username  string  `json:"username"`
	Score     int     `json:"score"`
	TimeTaken float64 `json:"timeTaken"`
	IsHost    bool    `json:"isHost"`
}

// AnswerResult is the outcome of the most recent submission.
type AnswerResult struct {
	IsCorrect     bool `json:"isCorrect"`
	PointsAwarded int  `json:"points"`
	TotalScore    int  `json:"totalScore"`
}

// User is the authenticated account returned by the REST API.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
