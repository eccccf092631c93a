package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/event"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// fakeArenaServer upgrades one connection, greets with arena_joined, and
// answers join_arena / submit_answer the way the real server would.
func fakeArenaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var env event.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			switch env.Event {
			case "join_arena":
				writeEvent(t, conn, "arena_joined", map[string]any{
					"arena":           map[string]any{"id": "arena-1", "title": "Capitals"},
					"isCreator":       false,
					"participationId": "p1",
				})
			case "submit_answer":
				var payload struct {
					SelectedOption int `json:"selectedOption"`
				}
				_ = json.Unmarshal(env.Data, &payload)
				writeEvent(t, conn, "answer_submitted", map[string]any{
					"isCorrect":  payload.SelectedOption == 1,
					"points":     10,
					"totalScore": 10,
				})
			}
		}
	}))
}

func writeEvent(t *testing.T, conn *websocket.Conn, name string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Errorf("marshal %s: %v", name, err)
		return
	}
	if err := conn.WriteJSON(event.Envelope{Event: name, Data: raw}); err != nil {
		t.Errorf("write %s: %v", name, err)
	}
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// readNext skips connection-state events and returns the next server
// event, failing the test if none arrives in time.
func readNext(t *testing.T, events <-chan event.Event) event.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event stream closed early")
			}
			if _, isConn := ev.(event.ConnectionChanged); isConn {
				continue
			}
			return ev
		case <-deadline:
			t.Fatalf("timed out waiting for event")
		}
	}
}

func TestRoundTrip(t *testing.T) {
	server := fakeArenaServer(t)
	defer server.Close()

	adapter := New(wsURL(server), zerolog.Nop())
	if err := adapter.Connect(context.Background(), Credentials{UserID: "u1", Token: "tok"}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Send(event.JoinArena{UserID: "u1", ArenaID: "arena-1"}); err != nil {
		t.Fatalf("send join: %v", err)
	}

	joined, ok := readNext(t, adapter.Events()).(event.ArenaJoined)
	if !ok {
		t.Fatalf("expected arena_joined")
	}
	if joined.ParticipationID != "p1" || joined.Arena.ID != "arena-1" {
		t.Fatalf("unexpected join payload: %+v", joined)
	}

	if err := adapter.Send(event.SubmitAnswer{ParticipationID: "p1", QuestionID: "q1", SelectedOption: 1, TimeTaken: 3.5}); err != nil {
		t.Fatalf("send answer: %v", err)
	}
	result, ok := readNext(t, adapter.Events()).(event.AnswerSubmitted)
	if !ok {
		t.Fatalf("expected answer_submitted")
	}
	if !result.IsCorrect || result.TotalScore != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	server := fakeArenaServer(t)
	defer server.Close()

	adapter := New(wsURL(server), zerolog.Nop())
	defer adapter.Close()

	if err := adapter.Connect(context.Background(), Credentials{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := adapter.Connect(context.Background(), Credentials{}); err != nil {
		t.Fatalf("second connect should be a no-op, got %v", err)
	}
	if got := adapter.State(); got != domain.ConnConnected {
		t.Fatalf("expected connected, got %s", got)
	}
}

func TestSendWhileDisconnected(t *testing.T) {
	adapter := New("ws://127.0.0.1:0/ws", zerolog.Nop())
	err := adapter.Send(event.StartQuiz{ArenaID: "arena-1", UserID: "u1"})
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestHandshakeFailureReportsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	adapter := New(wsURL(server), zerolog.Nop())
	defer adapter.Close()

	if err := adapter.Connect(context.Background(), Credentials{}); err == nil {
		t.Fatalf("expected handshake failure")
	}
	if got := adapter.State(); got != domain.ConnError {
		t.Fatalf("expected error state, got %s", got)
	}
}

func TestServerDropSurfacesDisconnect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer server.Close()

	adapter := New(wsURL(server), zerolog.Nop())
	defer adapter.Close()

	if err := adapter.Connect(context.Background(), Credentials{}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-adapter.Events():
			if !ok {
				t.Fatalf("event stream closed before disconnect event")
			}
			if change, isConn := ev.(event.ConnectionChanged); isConn && change.State == domain.ConnDisconnected {
				return
			}
		case <-deadline:
			t.Fatalf("no disconnect event observed")
		}
	}
}

func TestCloseEndsEventStream(t *testing.T) {
	server := fakeArenaServer(t)
	defer server.Close()

	adapter := New(wsURL(server), zerolog.Nop())
	if err := adapter.Connect(context.Background(), Credentials{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Idempotent.
	if err := adapter.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-adapter.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("event stream never closed")
		}
	}
}

// A Close racing an in-flight Connect must never let a connection-state
// delivery hit the closed event stream. Nobody drains the stream here,
// so any unguarded send would panic.
func TestCloseRacesConnect(t *testing.T) {
	server := fakeArenaServer(t)
	defer server.Close()

	for i := 0; i < 25; i++ {
		adapter := New(wsURL(server), zerolog.Nop())

		connectDone := make(chan struct{})
		go func() {
			_ = adapter.Connect(context.Background(), Credentials{UserID: "u1"})
			close(connectDone)
		}()

		if err := adapter.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		<-connectDone

		if _, ok := <-adapter.Events(); ok {
			// Drain anything buffered before Close won the race.
			for range adapter.Events() {
			}
		}
	}
}
