package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4 << 10
	sendBufferSize = 32
)

const (
	eventJoinProject  = "joinProject"
	eventLeaveProject = "leaveProject"
	eventJoined       = "joinedProject"
	eventLeft         = "leftProject"
	eventError        = "error"
)

// GrantChecker answers whether a user holds any role on a project. Joins
// are refused for users without a grant.
type GrantChecker interface {
	HasGrant(ctx context.Context, userID domain.UserID, projectID domain.ProjectID) (bool, error)
}

// clientFrame is what sessions send: an event name plus a project id.
type clientFrame struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// serverFrame is what sessions receive.
type serverFrame struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Handler upgrades authenticated HTTP requests to websocket sessions and
// services their join/leave traffic against the registry.
type Handler struct {
	registry *Registry
	tokens   ports.TokenIssuer
	grants   GrantChecker
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(registry *Registry, tokens ports.TokenIssuer, grants GrantChecker, log zerolog.Logger) *Handler {
	return &Handler{
		registry: registry,
		tokens:   tokens,
		grants:   grants,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP authenticates the request before upgrading: a missing or
// invalid token is rejected with 401 and no websocket is established.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sess := &session{
		ws:   ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	h.registry.Register(sess, userID)
	h.log.Info().Str("user_id", userID.String()).Msg("session connected")

	go sess.writePump()
	h.readPump(r.Context(), sess, userID)
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// readPump owns the session lifetime: it returns on read error or close,
// after which the session is unregistered and every room membership dropped.
func (h *Handler) readPump(ctx context.Context, sess *session, userID domain.UserID) {
	defer func() {
		h.registry.Unregister(sess)
		sess.Close()
		h.log.Info().Str("user_id", userID.String()).Msg("session disconnected")
	}()

	sess.ws.SetReadLimit(maxFrameSize)
	_ = sess.ws.SetReadDeadline(time.Now().Add(pongWait))
	sess.ws.SetPongHandler(func(string) error {
		return sess.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := sess.ws.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			sess.sendEvent(eventError, "malformed frame")
			continue
		}
		h.handleFrame(ctx, sess, userID, frame)
	}
}

// handleFrame dispatches on the event name first: an unrecognized event is
// reported as such no matter what its data carries.
func (h *Handler) handleFrame(ctx context.Context, sess *session, userID domain.UserID, frame clientFrame) {
	switch frame.Event {
	case eventJoinProject:
		projectID, err := domain.ParseProjectID(frame.Data)
		if err != nil {
			sess.sendEvent(eventError, "invalid project id")
			return
		}
		ok, err := h.grants.HasGrant(ctx, userID, projectID)
		if err != nil {
			h.log.Error().Err(err).Str("project_id", projectID.String()).Msg("grant lookup failed")
			sess.sendEvent(eventError, "join failed")
			return
		}
		if !ok {
			sess.sendEvent(eventError, "not a member of this project")
			return
		}
		h.registry.JoinRoom(sess, projectID)
		sess.sendEvent(eventJoined, projectID.String())
	case eventLeaveProject:
		projectID, err := domain.ParseProjectID(frame.Data)
		if err != nil {
			sess.sendEvent(eventError, "invalid project id")
			return
		}
		h.registry.LeaveRoom(sess, projectID)
		sess.sendEvent(eventLeft, projectID.String())
	default:
		sess.sendEvent(eventError, "unknown event")
	}
}

// session is one websocket connection with a buffered outbound queue. The
// write pump is the only goroutine that writes to the socket.
type session struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

// Send queues a frame without blocking. A full buffer means a slow reader;
// the frame is dropped and false returned.
func (s *session) Send(msg []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- msg:
		return true
	default:
		return false
	}
}

func (s *session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	_ = s.ws.Close()
}

func (s *session) sendEvent(event string, payload any) {
	raw, err := json.Marshal(serverFrame{Event: event, Payload: payload})
	if err != nil {
		return
	}
	s.Send(raw)
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()
	for {
		select {
		case msg := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
