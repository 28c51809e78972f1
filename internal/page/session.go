// Package page drives the browser page over a websocket. The page's button
// and paragraph are exposed as a lookup.Trigger and a lookup.Output so the
// lookup handler never touches the browser directly.
package page

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Flarenzy/whats-my-ip/internal/lookup"
)

const (
	ControlID = "getIP"
	OutputID  = "ipAddress"

	MessageActivate = "activate"
	MessageText     = "text"

	writeWait       = 5 * time.Second
	maxMessageBytes = 4096
)

// Message is the single frame shape used in both directions.
type Message struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Text   string `json:"text,omitempty"`
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type Session struct {
	ID string

	conn   *websocket.Conn
	logger *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once

	mu        sync.Mutex
	reactions map[string][]func()
}

func NewSession(conn *websocket.Conn, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()

	return &Session{
		ID:        id,
		conn:      conn,
		logger:    logger.With("session", id),
		reactions: make(map[string][]func()),
	}
}

func (s *Session) Control(id string) *Control {
	return &Control{session: s, id: id}
}

func (s *Session) Text(id string) *Text {
	return &Text{session: s, id: id}
}

// Serve reads frames until the browser goes away or ctx ends.
func (s *Session) Serve(ctx context.Context) error {
	s.conn.SetReadLimit(maxMessageBytes)
	stop := context.AfterFunc(ctx, func() {
		_ = s.Close()
	})
	defer stop()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.DebugContext(ctx, "dropping malformed page message", "err", err.Error())
			continue
		}
		s.dispatch(ctx, msg)
	}
}

func (s *Session) dispatch(ctx context.Context, msg Message) {
	switch msg.Type {
	case MessageActivate:
		s.mu.Lock()
		reactions := append([]func(){}, s.reactions[msg.Target]...)
		s.mu.Unlock()

		if len(reactions) == 0 {
			s.logger.DebugContext(ctx, "activation for unknown control", "target", msg.Target)
		}
		for _, fn := range reactions {
			fn()
		}
	default:
		s.logger.DebugContext(ctx, "ignoring page message", "type", msg.Type)
	}
}

func (s *Session) sendLocked(msg Message) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait),
		)
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

var (
	_ lookup.Trigger = (*Control)(nil)
	_ lookup.Output  = (*Text)(nil)
)

// Control is a page element that raises activations.
type Control struct {
	session *Session
	id      string
}

func (c *Control) OnActivate(fn func()) {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.reactions[c.id] = append(c.session.reactions[c.id], fn)
}

// Text is a page element whose text content is replaced on SetText. The
// last value is mirrored locally.
type Text struct {
	session *Session
	id      string
	element lookup.TextElement
}

func (t *Text) SetText(text string) {
	t.session.writeMu.Lock()
	defer t.session.writeMu.Unlock()

	t.element.SetText(text)
	if err := t.session.sendLocked(Message{Type: MessageText, Target: t.id, Text: text}); err != nil {
		t.session.logger.Debug("page text update not delivered", "target", t.id, "err", err.Error())
	}
}

func (t *Text) Text() string {
	return t.element.Text()
}
