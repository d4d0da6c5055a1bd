package network

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/JamWare/Funamboard/protocol"
	"github.com/JamWare/Funamboard/room"
)

const (
	readLimit     = 1 << 20 // 1MB
	readDeadline  = 60 * time.Second
	writeDeadline = 10 * time.Second
	pingEvery     = 25 * time.Second
	sendBuffer    = 64
)

// Server exposes the ride rooms over websocket plus a couple of plain HTTP
// endpoints for room discovery.
type Server struct {
	mgr *room.Manager
	log *zap.Logger

	upgrader websocket.Upgrader
}

func NewServer(mgr *room.Manager, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		mgr: mgr,
		log: log,
		upgrader: websocket.Upgrader{
			// For dev, allow all origins. Lock this down in prod.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the HTTP mux: /ws?room=CODE, /rooms, /create, /healthz.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.HandleFunc("/create", s.handleCreate)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.mgr.ListRooms())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	code := s.mgr.CreateRoom()
	s.log.Info("room created", zap.String("room", code))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("room")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}
	rm := s.mgr.GetOrCreateRoom(code)
	if rm == nil {
		http.Error(w, "invalid room code", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	wc := newWSConn(conn)
	go wc.writePump()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	// First message must be a hello.
	hello, err := readHello(conn)
	if err != nil {
		s.log.Warn("handshake failed", zap.Error(err))
		_ = wc.Close()
		return
	}

	reply := make(chan room.JoinResult, 1)
	select {
	case rm.Inbox <- room.Join{Conn: wc, Name: hello.Name, Reply: reply}:
	case <-rm.Done():
		_ = wc.Close()
		return
	}
	var res room.JoinResult
	select {
	case res = <-reply:
	case <-rm.Done():
		_ = wc.Close()
		return
	}

	welcome, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
		RiderID: res.RiderID,
		TickHz:  protocol.SimTickHz,
	})
	if err == nil {
		_ = wc.Send(welcome)
	}

	s.log.Info("rider connected",
		zap.String("room", code),
		zap.String("rider", res.RiderID))

	s.readLoop(conn, rm, res.RiderID)
	select {
	case rm.Inbox <- room.Leave{RiderID: res.RiderID}:
	case <-rm.Done():
	}
	s.log.Info("rider disconnected", zap.String("rider", res.RiderID))
}

func readHello(conn *websocket.Conn) (protocol.Hello, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.Hello{}, err
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, errors.New("expected hello, got " + env.T)
	}
	return protocol.DecodePayload[protocol.Hello](env)
}

func (s *Server) readLoop(conn *websocket.Conn, rm *room.Room, riderID string) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			s.log.Debug("bad envelope", zap.Error(err))
			continue
		}
		switch env.T {
		case protocol.MsgPose:
			pose, err := protocol.DecodePayload[protocol.PoseInput](env)
			if err != nil {
				continue
			}
			rm.Inbox <- room.Pose{RiderID: riderID, Pose: pose}
		case protocol.MsgAttach:
			rm.Inbox <- room.Attach{RiderID: riderID}
		case protocol.MsgDetach:
			rm.Inbox <- room.Detach{RiderID: riderID}
		}
	}
}

// wsConn adapts a websocket connection to room.Conn. Sends go through a
// buffered channel so a slow client never stalls the room's tick loop.
type wsConn struct {
	conn *websocket.Conn
	out  chan []byte
	done chan struct{}

	// closeOnce guards done: the room goroutine and writePump can both
	// decide to close the connection at the same time.
	closeOnce sync.Once
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn: conn,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (w *wsConn) Send(b []byte) error {
	select {
	case w.out <- b:
		return nil
	case <-w.done:
		return errors.New("connection closed")
	default:
		// Buffer full: the client is too slow, drop it.
		return errors.New("send buffer full")
	}
}

func (w *wsConn) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.conn.Close()
	})
	return err
}

func (w *wsConn) writePump() {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	for {
		select {
		case b := <-w.out:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := w.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				_ = w.Close()
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = w.Close()
				return
			}
		case <-w.done:
			return
		}
	}
}
