// Package channel owns the realtime connection to the arena server. One
// adapter holds at most one live websocket at any instant; inbound frames
// are decoded and delivered on a single event channel, together with
// synthetic connection-state events, so the session state machine sees
// exactly one ordered stream.
package channel

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/domain"
	"github.com/Uvrat/Quiz-Battle-Royale-sub001/internal/event"
)

// Credentials authenticate the websocket handshake.
type Credentials struct {
	UserID string
	Token  string
}

// Adapter is the realtime channel. Create with New, open with Connect,
// send commands with Send, and always Close on every exit path of the
// owning view: Close is what guarantees the read pump and its
// subscriptions are gone before the session is considered torn down.
type Adapter struct {
	url    string
	dialer *websocket.Dialer
	log    zerolog.Logger

	events chan event.Event
	done   chan struct{}

	mu       sync.Mutex
	state    domain.ConnectionState
	conn     *websocket.Conn
	pumpDone chan struct{}
	closed   bool

	deliverMu    sync.RWMutex
	eventsClosed bool
}

func New(url string, log zerolog.Logger) *Adapter {
	return &Adapter{
		url:    url,
		dialer: websocket.DefaultDialer,
		log:    log.With().Str("component", "channel").Logger(),
		events: make(chan event.Event, 32),
		done:   make(chan struct{}),
		state:  domain.ConnDisconnected,
	}
}

// Events is the single ordered stream of decoded server events and
// connection-state changes. It is closed by Close and only by Close.
func (a *Adapter) Events() <-chan event.Event {
	return a.events
}

// State reports the current connection lifecycle state.
func (a *Adapter) State() domain.ConnectionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Connect performs the websocket handshake. Calling while a connection
// is live or in progress is a no-op. A handshake failure moves the
// adapter to the error state and is reported; there is no automatic
// retry. Reconnecting after a drop waits for the previous read pump to
// exit first, so handlers never accumulate across connections.
func (a *Adapter) Connect(ctx context.Context, creds Credentials) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return fmt.Errorf("connect: %w", domain.ErrNotConnected)
	}
	if a.state == domain.ConnConnected || a.state == domain.ConnConnecting {
		a.mu.Unlock()
		return nil
	}
	prevPump := a.pumpDone
	a.state = domain.ConnConnecting
	a.mu.Unlock()

	if prevPump != nil {
		<-prevPump
	}
	a.deliver(event.ConnectionChanged{State: domain.ConnConnecting})

	header := http.Header{}
	if creds.Token != "" {
		header.Set("Authorization", "Bearer "+creds.Token)
	}
	if creds.UserID != "" {
		header.Set("X-User-ID", creds.UserID)
	}

	conn, _, err := a.dialer.DialContext(ctx, a.url, header)
	if err != nil {
		a.mu.Lock()
		a.state = domain.ConnError
		a.mu.Unlock()
		a.deliver(event.ConnectionChanged{State: domain.ConnError, Err: err.Error()})
		return fmt.Errorf("dial %s: %w", a.url, err)
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		conn.Close()
		return fmt.Errorf("connect: %w", domain.ErrNotConnected)
	}
	a.conn = conn
	a.state = domain.ConnConnected
	a.pumpDone = make(chan struct{})
	go a.readPump(conn, a.pumpDone)
	a.mu.Unlock()

	a.deliver(event.ConnectionChanged{State: domain.ConnConnected})
	a.log.Info().Str("url", a.url).Msg("realtime channel connected")
	return nil
}

// Send encodes and writes one command. Without a live connection it
// reports domain.ErrNotConnected instead of panicking or queueing.
func (a *Adapter) Send(cmd event.Command) error {
	frame, err := event.Encode(cmd)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != domain.ConnConnected || a.conn == nil {
		a.log.Warn().Str("command", cmd.CommandName()).Msg("send while disconnected dropped")
		return domain.ErrNotConnected
	}
	if err := a.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write %s: %w", cmd.CommandName(), err)
	}
	return nil
}

// Close tears the channel down: the websocket is closed, the read pump is
// waited out, and the event stream is closed. Idempotent.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.state = domain.ConnDisconnected
	conn := a.conn
	a.conn = nil
	pump := a.pumpDone
	a.mu.Unlock()

	close(a.done)
	if conn != nil {
		conn.Close()
	}
	if pump != nil {
		<-pump
	}
	a.deliverMu.Lock()
	a.eventsClosed = true
	close(a.events)
	a.deliverMu.Unlock()
	a.log.Info().Msg("realtime channel closed")
	return nil
}

func (a *Adapter) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			conn.Close()

			a.mu.Lock()
			closed := a.closed
			if !closed {
				a.state = domain.ConnDisconnected
				a.conn = nil
			}
			a.mu.Unlock()

			if !closed {
				a.log.Warn().Err(err).Msg("realtime channel dropped")
				a.deliver(event.ConnectionChanged{State: domain.ConnDisconnected, Err: err.Error()})
			}
			return
		}

		ev, err := event.Decode(frame)
		if err != nil {
			a.log.Warn().Err(err).Msg("undecodable frame dropped")
			continue
		}
		a.deliver(ev)
	}
}

// deliver pushes one event onto the stream. The read lock keeps Close
// from closing the stream while a send is in flight, so a delivery
// racing Close never hits a closed channel.
func (a *Adapter) deliver(ev event.Event) {
	a.deliverMu.RLock()
	defer a.deliverMu.RUnlock()
	if a.eventsClosed {
		return
	}
	select {
	case a.events <- ev:
	case <-a.done:
	}
}
