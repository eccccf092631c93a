// Package session implements the live-quiz session state machine. It is
// the single source of truth for one client's participation in one
// arena: phase, current question, countdown, selection, submission
// status, participant set and role.
//
// All mutation is serialized through one mutex, and every entry point is
// one of: an inbound realtime event, a local user action, or a countdown
// callback. Views never share mutable state with the machine; they read
// immutable snapshots through Snapshot or Subscribe.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/countdown"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/event"
)

// Join modes requested via join_arena. Hints only; arena_joined decides.
const (
	ModeParticipate = "participate"
	ModeSpectate    = "spectate"
)

// Sender delivers outbound commands to the arena server. Implemented by
// channel.Adapter. Send must never panic; a detached channel reports an
// error instead.
type Sender interface {
	Send(cmd event.Command) error
}

// Config fixes the identifiers and collaborators for one session.
type Config struct {
	ArenaID string
	UserID  string
	// AsCreator and Mode are forwarded on join_arena as hints.
	AsCreator bool
	Mode      string

	Sender Sender
	Clock  clockwork.Clock
	Logger zerolog.Logger
}

// Snapshot is an immutable view of the session at one instant.
type Snapshot struct {
	Role            domain.Role
	Phase           domain.Phase
	Connection      domain.ConnectionState
	ArenaID         string
	UserID          string
	ParticipationID string
	Arena           domain.Arena

	Question       *domain.Question
	QuestionIndex  int
	TotalQuestions int
	TimeRemaining  int

	Selection  int
	LastResult *domain.AnswerResult

	Participants map[string]domain.Participant

	// LiveQuestionAck reports the outcome of the last add_live_question,
	// nil while none is pending resolution.
	LiveQuestionAck *bool

	Err string
}

// Machine is the session state machine. Create with New, feed it events
// through Run (or Apply directly), drive user intent through Select,
// Submit, StartQuiz and AddLiveQuestion, and observe it through
// Snapshot/Subscribe.
type Machine struct {
	arenaID   string
	userID    string
	asCreator bool
	mode      string

	sender Sender
	clock  clockwork.Clock
	log    zerolog.Logger
	timer  *countdown.Timer

	mu              sync.Mutex
	role            domain.Role
	phase           domain.Phase
	conn            domain.ConnectionState
	participationID string
	arena           domain.Arena
	joined          bool
	completionSent  bool

	question       *domain.Question
	questionIndex  int
	totalQuestions int
	remaining      int
	questionStart  time.Time
	timerGen       uint64
	timerLive      bool

	selection  int
	lastResult *domain.AnswerResult
	liveAck    *bool

	participants map[string]domain.Participant
	errMsg       string

	closed      bool
	subscribers map[chan Snapshot]struct{}
}

func New(cfg Config) *Machine {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	m := &Machine{
		arenaID:   cfg.ArenaID,
		userID:    cfg.UserID,
		asCreator: cfg.AsCreator,
		mode:      cfg.Mode,
		sender:    cfg.Sender,
		clock:     clock,
		log:       cfg.Logger.With().Str("component", "session").Str("arena_id", cfg.ArenaID).Logger(),

		role:         domain.RoleSpectator,
		phase:        domain.PhaseWaiting,
		conn:         domain.ConnDisconnected,
		selection:    domain.NoAnswer,
		participants: make(map[string]domain.Participant),
		subscribers:  make(map[chan Snapshot]struct{}),
	}
	m.timer = countdown.New(clock, m.handleTick, m.handleExpire)
	return m
}

// Join sends the join_arena request for this session. The session stays
// in waiting until arena_joined confirms.
func (m *Machine) Join() error {
	return m.sender.Send(event.JoinArena{
		UserID:    m.userID,
		ArenaID:   m.arenaID,
		IsCreator: m.asCreator,
		Mode:      m.mode,
	})
}

// Run consumes events until the stream closes or ctx is cancelled. On
// either exit the countdown is cancelled, so no timer callback can fire
// after Run returns.
func (m *Machine) Run(ctx context.Context, events <-chan event.Event) error {
	defer m.cancelCountdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			m.Apply(ev)
		}
	}
}

// Close cancels the countdown and closes all subscriber channels.
func (m *Machine) Close() {
	m.cancelCountdown()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for ch := range m.subscribers {
		delete(m.subscribers, ch)
		close(ch)
	}
}

// Apply dispatches one inbound event through the state machine.
func (m *Machine) Apply(ev event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := ev.(type) {
	case event.ArenaJoined:
		m.applyJoined(e)
	case event.ParticipantsUpdated:
		m.applyParticipants(e)
	case event.QuestionBroadcast:
		m.applyQuestion(e)
	case event.AnswerSubmitted:
		m.applyAnswerResult(e)
	case event.QuizEnded:
		m.applyQuizEnded(e)
	case event.QuestionAdded:
		m.errMsg = ""
		ack := e.Success
		m.liveAck = &ack
	case event.ArenaError:
		m.errMsg = e.Message
		m.log.Warn().Str("event", e.Name()).Str("message", e.Message).Msg("server reported arena error")
	case event.AnswerError:
		m.errMsg = e.Message
		m.log.Warn().Str("event", e.Name()).Str("message", e.Message).Msg("server rejected answer")
	case event.ConnectionChanged:
		m.applyConnection(e)
	default:
		m.log.Warn().Str("event", ev.Name()).Msg("dropping unhandled event")
		return
	}
	m.notifyLocked()
}

func (m *Machine) applyJoined(e event.ArenaJoined) {
	if m.joined {
		m.log.Debug().Msg("duplicate arena_joined ignored")
		return
	}
	m.joined = true
	m.errMsg = ""
	m.arena = e.Arena

	switch {
	case e.IsCreator:
		m.role = domain.RoleHost
		if e.ParticipationID != "" {
			m.log.Warn().Msg("server sent participation id for host, discarding")
		}
	case e.ParticipationID != "":
		m.role = domain.RoleParticipant
		m.participationID = e.ParticipationID
	default:
		m.role = domain.RoleSpectator
	}
	m.log.Info().Str("role", string(m.role)).Str("participation_id", m.participationID).Msg("joined arena")
}

func (m *Machine) applyParticipants(e event.ParticipantsUpdated) {
	if m.phase == domain.PhaseQuizEnded {
		m.log.Debug().Str("event", e.Name()).Msg("participants update after quiz end ignored")
		return
	}
	m.errMsg = ""
	m.participants = participantMap(e.Participants)
}

func (m *Machine) applyQuestion(e event.QuestionBroadcast) {
	switch m.phase {
	case domain.PhaseQuizEnded:
		m.log.Debug().Str("question_id", e.Question.ID).Msg("question after quiz end ignored")
		return
	case domain.PhaseQuestionActive:
		if m.question != nil && m.question.ID == e.Question.ID {
			// Redelivery of the live question: no timer restart, no
			// selection reset.
			m.log.Debug().Str("question_id", e.Question.ID).Msg("duplicate question ignored")
			return
		}
		// A different question while one is active means the server moved
		// on (its time-up signal may have been lost); supersede.
		m.log.Info().Str("question_id", e.Question.ID).Msg("question superseded mid-flight")
	}

	q := e.Question
	q.Options = append([]string(nil), e.Question.Options...)
	m.errMsg = ""
	m.question = &q
	m.questionIndex = e.QuestionNumber
	m.totalQuestions = e.TotalQuestions
	m.selection = domain.NoAnswer
	m.lastResult = nil
	m.liveAck = nil
	m.remaining = q.TimeLimitSeconds
	m.questionStart = m.clock.Now()
	m.phase = domain.PhaseQuestionActive
	m.timerGen = m.timer.Start(q.TimeLimitSeconds)
	m.timerLive = true
	m.log.Info().
		Str("question_id", q.ID).
		Int("number", e.QuestionNumber).
		Int("total", e.TotalQuestions).
		Int("time_limit", q.TimeLimitSeconds).
		Msg("question active")
}

func (m *Machine) applyAnswerResult(e event.AnswerSubmitted) {
	if m.phase != domain.PhaseAnswerLocked {
		m.log.Debug().Str("phase", string(m.phase)).Msg("answer_submitted outside answer_locked ignored")
		return
	}
	m.errMsg = ""
	m.lastResult = &domain.AnswerResult{
		IsCorrect:     e.IsCorrect,
		PointsAwarded: e.Points,
		TotalScore:    e.TotalScore,
	}
}

func (m *Machine) applyQuizEnded(e event.QuizEnded) {
	if m.phase == domain.PhaseQuizEnded {
		return
	}
	m.stopCountdownLocked()
	m.errMsg = ""
	m.phase = domain.PhaseQuizEnded
	m.question = nil
	m.remaining = 0
	m.participants = participantMap(e.Participants)

	if m.participationID != "" && !m.completionSent {
		m.completionSent = true
		if err := m.sender.Send(event.CompleteParticipation{ParticipationID: m.participationID}); err != nil {
			m.log.Warn().Err(err).Msg("complete_participation not delivered")
		}
	}
	m.log.Info().Int("participants", len(e.Participants)).Msg("quiz ended")
}

func (m *Machine) applyConnection(e event.ConnectionChanged) {
	m.conn = e.State
	if e.Err != "" {
		m.errMsg = e.Err
	}
	if e.State != domain.ConnDisconnected && e.State != domain.ConnError {
		return
	}
	// The channel is gone: no further server events can land, so an
	// active question cannot finish. Drop back to waiting; a rejoin
	// resynchronizes everything via arena_joined + participant updates.
	m.stopCountdownLocked()
	if m.phase == domain.PhaseQuestionActive || m.phase == domain.PhaseAnswerLocked {
		m.phase = domain.PhaseWaiting
		m.question = nil
		m.selection = domain.NoAnswer
		m.lastResult = nil
		m.remaining = 0
	}
}

// Select records the participant's option choice. Ignored outside
// question_active, for non-participants, after submission, and for
// out-of-range indices.
func (m *Machine) Select(option int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != domain.PhaseQuestionActive || m.role != domain.RoleParticipant {
		return
	}
	if m.question == nil || option < 0 || option >= len(m.question.Options) {
		return
	}
	m.selection = option
	m.notifyLocked()
}

// Submit locks in the current selection and sends submit_answer. A
// second call for the same question is a no-op: the phase guard holds it
// off once answer_locked is reached.
func (m *Machine) Submit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitLocked(false)
}

func (m *Machine) submitLocked(auto bool) {
	if m.phase != domain.PhaseQuestionActive || m.participationID == "" || m.question == nil {
		return
	}

	m.stopCountdownLocked()
	m.phase = domain.PhaseAnswerLocked
	elapsed := m.clock.Since(m.questionStart).Seconds()

	cmd := event.SubmitAnswer{
		ParticipationID: m.participationID,
		QuestionID:      m.question.ID,
		SelectedOption:  m.selection,
		TimeTaken:       elapsed,
	}
	if err := m.sender.Send(cmd); err != nil {
		m.log.Warn().Err(err).Bool("auto", auto).Msg("submit_answer not delivered")
	} else {
		m.log.Info().
			Str("question_id", cmd.QuestionID).
			Int("selected", cmd.SelectedOption).
			Bool("auto", auto).
			Msg("answer submitted")
	}
	m.notifyLocked()
}

// StartQuiz asks the server to begin the question sequence. Host only,
// from the waiting room.
func (m *Machine) StartQuiz() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.role != domain.RoleHost {
		return domain.ErrNotHost
	}
	if m.phase == domain.PhaseQuizEnded {
		return domain.ErrSessionEnded
	}
	return m.sender.Send(event.StartQuiz{ArenaID: m.arenaID, UserID: m.userID})
}

// AddLiveQuestion pushes a new question into the running session. Host
// only; the question_added ack lands on the snapshot.
func (m *Machine) AddLiveQuestion(draft domain.QuestionDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.role != domain.RoleHost {
		return domain.ErrNotHost
	}
	if m.phase == domain.PhaseQuizEnded {
		return domain.ErrSessionEnded
	}
	m.liveAck = nil
	return m.sender.Send(event.AddLiveQuestion{
		ArenaID:      m.arenaID,
		UserID:       m.userID,
		QuestionData: draft,
	})
}

func (m *Machine) handleTick(gen uint64, remaining int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.timerLive || gen != m.timerGen || m.phase != domain.PhaseQuestionActive {
		return
	}
	m.remaining = remaining
	m.notifyLocked()
}

func (m *Machine) handleExpire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.timerLive || gen != m.timerGen {
		return
	}
	m.timerLive = false
	m.remaining = 0

	if m.phase == domain.PhaseQuestionActive && m.role == domain.RoleParticipant && m.participationID != "" {
		// Timed out without a manual submit: record a no-answer result so
		// the participation does not hang.
		m.submitLocked(true)
		return
	}
	m.notifyLocked()
}

func (m *Machine) cancelCountdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCountdownLocked()
}

func (m *Machine) stopCountdownLocked() {
	m.timerLive = false
	m.timer.Cancel()
}

// Snapshot returns an immutable copy of the session state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers for snapshot updates. The channel receives the
// current snapshot immediately and a fresh one after every state change;
// slow consumers see the latest snapshot, not every intermediate one.
// The caller must invoke cancel to release the subscription.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	m.subscribers[ch] = struct{}{}
	// Send the initial snapshot while still holding the lock: a fresh
	// channel with capacity cannot block, and an Apply slipping in
	// between registration and this send would otherwise queue a newer
	// snapshot ahead of the stale initial.
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Machine) notifyLocked() {
	snap := m.snapshotLocked()
	for ch := range m.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Role:            m.role,
		Phase:           m.phase,
		Connection:      m.conn,
		ArenaID:         m.arenaID,
		UserID:          m.userID,
		ParticipationID: m.participationID,
		Arena:           m.arena,
		QuestionIndex:   m.questionIndex,
		TotalQuestions:  m.totalQuestions,
		TimeRemaining:   m.remaining,
		Selection:       m.selection,
		Participants:    make(map[string]domain.Participant, len(m.participants)),
		Err:             m.errMsg,
	}
	if m.question != nil {
		q := *m.question
		q.Options = append([]string(nil), m.question.Options...)
		snap.Question = &q
	}
	if m.lastResult != nil {
		r := *m.lastResult
		snap.LastResult = &r
	}
	if m.liveAck != nil {
		ack := *m.liveAck
		snap.LiveQuestionAck = &ack
	}
	for id, p := range m.participants {
		snap.Participants[id] = p
	}
	return snap
}

func participantMap(list []domain.Participant) map[string]domain.Participant {
	set := make(map[string]domain.Participant, len(list))
	for _, p := range list {
		set[p.UserID] = p
	}
	return set
}
